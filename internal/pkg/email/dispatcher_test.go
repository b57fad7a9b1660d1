package email

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversQueuedJobs(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())

	var delivered atomic.Int32
	for i := 0; i < 5; i++ {
		ok := d.Deliver(func() error {
			delivered.Add(1)
			return nil
		})
		assert.True(t, ok)
	}

	d.Close()
	assert.Equal(t, int32(5), delivered.Load())
}

func TestDispatcherInlineFallbackWhenQueueFull(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	defer d.Close()

	// Block the worker so the queue stays full
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	d.Deliver(func() error {
		wg.Done()
		<-release
		return nil
	})
	wg.Wait()

	// Fill the single queue slot
	d.Deliver(func() error { return nil })

	// Queue is full now; this send must run inline on the caller
	done := make(chan bool, 1)
	go func() {
		done <- d.Deliver(func() error { return nil })
	}()

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("inline fallback did not run while worker was blocked")
	}

	close(release)
}

func TestDispatcherReportsInlineFailure(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	defer d.Close()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	d.Deliver(func() error {
		wg.Done()
		<-release
		return nil
	})
	wg.Wait()
	d.Deliver(func() error { return nil })

	ok := d.Deliver(func() error { return errors.New("relay down") })
	assert.False(t, ok, "inline send failure must be reported to the caller")

	close(release)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(4, zerolog.Nop())
	require.NotPanics(t, func() {
		d.Close()
		d.Close()
	})
}
