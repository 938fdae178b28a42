package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Wrapped not found", err: fmt.Errorf("user 7: %w", ErrNotFound), want: true},
		{name: "Insufficient funds", err: ErrInsufficientFunds, want: true},
		{name: "Store unavailable", err: fmt.Errorf("%w: %w", ErrStoreUnavailable, context.DeadlineExceeded), want: false},
		{name: "Unknown", err: errors.New("connection reset"), want: false},
		{name: "Nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRejection(tt.err))
		})
	}
}
