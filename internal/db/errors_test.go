package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestError_WrapsCause(t *testing.T) {
	err := &Error{Op: OpJSONGet, Err: context.DeadlineExceeded}
	if err.Error() != "JSON.GET: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause not unwrapped")
	}
}

func TestIsExpected(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrKeyNotFound, true},
		{fmt.Errorf("product p1: %w", ErrKeyNotFound), true},
		{ErrIndexExists, true},
		{ErrIndexNotFound, true},
		{ErrUnavailable, false},
		{&Error{Op: OpSearch, Err: errors.New("boom")}, false},
	}
	for _, tt := range tests {
		if got := IsExpected(tt.err); got != tt.want {
			t.Errorf("IsExpected(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
