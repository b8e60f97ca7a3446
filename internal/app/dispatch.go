package app

import (
	"fmt"
	"sync"
)

type dispatchResult struct {
	value any
	err   error
}

// dispatcher serializes all state-changing work onto a single goroutine.
//
// Poll ticks, push events, and UI commands all arrive from different
// goroutines; funneling them through one queue keeps the collections and the
// token state free of races without fine-grained locking.
type dispatcher struct {
	once sync.Once
	q    chan func()
}

func newDispatcher(queueSize int) *dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &dispatcher{
		q: make(chan func(), queueSize),
	}
	d.once.Do(func() {
		go func() {
			for fn := range d.q {
				if fn != nil {
					fn()
				}
			}
		}()
	})
	return d
}

func (d *dispatcher) do(fn func()) error {
	if d == nil {
		return fmt.Errorf("dispatcher not initialized")
	}
	if fn == nil {
		return nil
	}
	d.q <- fn
	return nil
}

func (d *dispatcher) call(fn func() (any, error)) (any, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatcher not initialized")
	}
	if fn == nil {
		return nil, nil
	}
	done := make(chan dispatchResult, 1)
	d.q <- func() {
		value, err := fn()
		done <- dispatchResult{value: value, err: err}
	}
	res := <-done
	return res.value, res.err
}
