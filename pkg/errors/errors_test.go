package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	t.Parallel()

	err := Newf(ErrSourceNotFound, 404, "directory %s does not exist", "/data")
	if !stderrors.Is(err, ErrSourceNotFound) {
		t.Error("errors.Is failed to match the wrapped sentinel")
	}
	if err.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", err.StatusCode)
	}
	want := "document source not found: directory /data does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAppErrorSurvivesFurtherWrapping(t *testing.T) {
	t.Parallel()

	inner := New(ErrInvalidConfig, 400, "k must be positive")
	outer := fmt.Errorf("starting engine: %w", inner)

	if !stderrors.Is(outer, ErrInvalidConfig) {
		t.Error("sentinel lost through wrapping")
	}
	var appErr *AppError
	if !stderrors.As(outer, &appErr) {
		t.Fatal("AppError lost through wrapping")
	}
	if appErr.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", appErr.StatusCode)
	}
}

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "app error carries its own code", err: New(ErrInternal, 418, "teapot"), want: 418},
		{name: "source not found", err: ErrSourceNotFound, want: http.StatusNotFound},
		{name: "invalid config", err: ErrInvalidConfig, want: http.StatusBadRequest},
		{name: "invalid input", err: ErrInvalidInput, want: http.StatusBadRequest},
		{name: "timeout", err: ErrTimeout, want: http.StatusServiceUnavailable},
		{name: "unknown error", err: stderrors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped sentinel", err: fmt.Errorf("context: %w", ErrSourceNotFound), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
