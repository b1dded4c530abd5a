// Package suggest serves prefix autocomplete from a character trie. Every
// node carries a bounded list of the K highest-frequency words passing
// through it, maintained incrementally at insert time, so a prefix lookup
// answers in O(len(prefix)) without walking the subtree.
package suggest

import (
	"log/slog"

	"github.com/daye10/textsearch/internal/index"
	apperrors "github.com/daye10/textsearch/pkg/errors"
)

// entry is one (word, frequency) pair retained in a node's top-K list.
type entry struct {
	word string
	freq int
}

// node is a trie node. children are exclusively owned: the structure is a
// tree with no back references or cycles.
type node struct {
	children map[rune]*node
	isEnd    bool
	// freq is the canonical frequency of the word ending here; last write
	// wins on re-insertion, independent of top-K membership.
	freq int
	// top holds at most K entries ordered by frequency descending, then
	// word ascending. The ordering doubles as the eviction rule: the last
	// entry is the one dropped when the list overflows.
	top []entry
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Engine is a trie-based autocomplete system parameterised by K, the
// maximum number of suggestions tracked per node.
type Engine struct {
	root   *node
	k      int
	logger *slog.Logger
}

// NewEngine creates an Engine tracking up to k suggestions per node.
func NewEngine(k int) (*Engine, error) {
	if k <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, 400, "suggestion count k must be positive, got %d", k)
	}
	return &Engine{
		root:   newNode(),
		k:      k,
		logger: slog.Default().With("component", "autocomplete"),
	}, nil
}

// Insert records a word with its frequency. Empty words and negative
// frequencies are rejected with a warning rather than an error: they are
// caller bugs, not recoverable states. Every node along the word's path has
// its top-K list updated; the terminal node additionally marks end-of-word
// and stores the canonical frequency.
func (e *Engine) Insert(word string, frequency int) {
	if word == "" {
		e.logger.Warn("ignoring empty word")
		return
	}
	if frequency < 0 {
		e.logger.Warn("ignoring negative frequency", "word", word, "frequency", frequency)
		return
	}

	n := e.root
	e.updateTopK(n, word, frequency)
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
		e.updateTopK(n, word, frequency)
	}
	n.isEnd = true
	n.freq = frequency
}

// updateTopK folds (word, frequency) into a node's bounded suggestion list.
// An existing word's frequency is replaced only if the new one is strictly
// greater; otherwise the pair is inserted. When the list exceeds K the last
// entry under the (frequency desc, word asc) order is evicted; that
// ordering is the deterministic tie-break for equal frequencies.
func (e *Engine) updateTopK(n *node, word string, frequency int) {
	for i := range n.top {
		if n.top[i].word == word {
			if frequency <= n.top[i].freq {
				return
			}
			n.top[i].freq = frequency
			e.siftUp(n, i)
			return
		}
	}

	n.top = append(n.top, entry{word: word, freq: frequency})
	e.siftUp(n, len(n.top)-1)
	if len(n.top) > e.k {
		n.top = n.top[:e.k]
	}
}

// siftUp restores the (frequency desc, word asc) order after the entry at
// position i grew or was appended. Everything above i is already ordered.
func (e *Engine) siftUp(n *node, i int) {
	for i > 0 && less(n.top[i], n.top[i-1]) {
		n.top[i], n.top[i-1] = n.top[i-1], n.top[i]
		i--
	}
}

// less orders entries by frequency descending, then word ascending.
func less(a, b entry) bool {
	if a.freq != b.freq {
		return a.freq > b.freq
	}
	return a.word < b.word
}

// Suggest returns up to K words starting with prefix, ordered by frequency
// descending. A prefix with no inserted words yields an empty slice. The
// empty prefix returns the root's globally-weighted top-K.
func (e *Engine) Suggest(prefix string) []string {
	n := e.root
	for _, r := range prefix {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	words := make([]string, len(n.top))
	for i, ent := range n.top {
		words[i] = ent.word
	}
	return words
}

// K returns the per-node suggestion bound.
func (e *Engine) K() int {
	return e.k
}

// PopulateFromSnapshot inserts every indexed term using its document
// frequency as the popularity signal.
func (e *Engine) PopulateFromSnapshot(snap *index.Snapshot) {
	for term, postings := range snap.Postings {
		e.Insert(term, len(postings))
	}
	e.logger.Debug("autocomplete populated", "terms", snap.TermCount())
}
