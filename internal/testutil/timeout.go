package testutil

import (
	"context"
	"testing"
	"time"
)

const (
	// DefaultStoreTimeout bounds a state manager call in tests.
	DefaultStoreTimeout = 30 * time.Second

	// DefaultTestBuffer is kept free before the test deadline for cleanup.
	DefaultTestBuffer = 5 * time.Second
)

// ContextWithTestDeadline returns a context that expires DefaultTestBuffer
// before the test deadline, or after fallback when the test has none.
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	if deadline, ok := t.Deadline(); ok {
		if adjusted := deadline.Add(-DefaultTestBuffer); time.Until(adjusted) > 0 && time.Until(adjusted) < fallback {
			return context.WithDeadline(context.Background(), adjusted)
		}
	}
	return context.WithTimeout(context.Background(), fallback)
}

// StoreContext creates a context for state manager operations.
func StoreContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadline(t, DefaultStoreTimeout)
}
