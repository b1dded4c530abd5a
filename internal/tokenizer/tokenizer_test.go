package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimpleTokenize(t *testing.T) {
	t.Parallel()

	tok := NewSimple()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \t\n  ",
			want: nil,
		},
		{
			name: "punctuation only",
			text: "... !!! ---",
			want: nil,
		},
		{
			name: "lowercases",
			text: "The Quick BROWN Fox",
			want: []string{"the", "quick", "brown", "fox"},
		},
		{
			name: "splits on punctuation",
			text: "hello, world! foo-bar",
			want: []string{"hello", "world", "foo", "bar"},
		},
		{
			name: "keeps digits and underscore",
			text: "error_code 404 v2",
			want: []string{"error_code", "404", "v2"},
		},
		{
			name: "unicode letters survive",
			text: "café Ünïcode",
			want: []string{"café", "ünïcode"},
		},
		{
			name: "repeated terms preserved in order",
			text: "the cat and the dog",
			want: []string{"the", "cat", "and", "the", "dog"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}
