package worker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermanentNilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Permanent(nil))
}

func TestIsPermanentClassification(t *testing.T) {
	t.Parallel()

	base := errors.New("missing document")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error is retryable", base, false},
		{"wrapped plain error is retryable", fmt.Errorf("handler: %w", base), false},
		{"permanent error", Permanent(base), true},
		{"permanentf error", Permanentf("bad payload: %v", base), true},
		{"wrapped permanent error", fmt.Errorf("handler: %w", Permanent(base)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}

func TestPermanentPreservesUnderlyingError(t *testing.T) {
	t.Parallel()

	base := errors.New("case not found")
	wrapped := Permanent(base)

	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, base.Error(), wrapped.Error())
}
