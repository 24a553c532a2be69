package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForResult(t *testing.T) {
	t.Parallel()
	ch := make(chan int, 1)
	ch <- 42
	assert.Equal(t, 42, WaitForResult(t, ch, time.Second, "no value"))
}

func TestRequireNoSignal(t *testing.T) {
	t.Parallel()
	RequireNoSignal(t, make(chan struct{}), 10*time.Millisecond, "unexpected signal")
}
