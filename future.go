package steer

import (
	"context"
	"sync"
)

// Future is the eventual result of a dispatch: a Capture or an error, set
// exactly once.
type Future struct {
	done    chan struct{}
	once    sync.Once
	capture Capture
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// failedFuture returns a Future that already failed with err.
func failedFuture(err error) *Future {
	f := newFuture()
	f.complete(Capture{}, err)
	return f
}

// complete sets the result. Only the first call has any effect.
func (f *Future) complete(c Capture, err error) bool {
	ok := false
	f.once.Do(func() {
		f.capture, f.err = c, err
		close(f.done)
		ok = true
	})
	return ok
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Get waits for the result or for ctx to end, whichever comes first.
// Cancelling ctx does not cancel the request; use the request's context.
func (f *Future) Get(ctx context.Context) (Capture, error) {
	select {
	case <-f.done:
		return f.capture, f.err
	case <-ctx.Done():
		return Capture{}, ctx.Err()
	}
}

// Wait blocks until the result is available.
func (f *Future) Wait() (Capture, error) {
	<-f.done
	return f.capture, f.err
}

// Then calls onSuccess or onFailure, on another goroutine, once the result
// is available. Either callback may be nil.
//
//	f.Then(nil, func(err error) {
//	    log.WithError(err).Error("request failed")
//	})
func (f *Future) Then(onSuccess func(Capture), onFailure func(error)) {
	go func() {
		<-f.done
		if f.err != nil {
			if onFailure != nil {
				onFailure(f.err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(f.capture)
		}
	}()
}
