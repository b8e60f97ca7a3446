// Package periodic provides a cancellable fixed-interval task.
//
// Tasks are bound to an explicit lifetime: whoever starts one must stop it on
// the relevant state transition. Nothing here is left for the garbage
// collector to reclaim.
package periodic

import (
	"sync"
	"time"
)

// Task is a running periodic invocation of a function.
type Task struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start invokes fn every interval until Stop is called. The first invocation
// happens one interval after Start; callers that need an immediate first run
// invoke fn themselves before starting the task.
//
// Invocations run sequentially on the task's own goroutine; a slow fn delays
// the next tick rather than overlapping it.
func Start(interval time.Duration, fn func()) *Task {
	t := &Task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.loop(interval, fn)
	return t
}

// Stop cancels the task. It is idempotent and safe to call from any
// goroutine. Stop does not wait for an in-flight invocation to return; use
// Done for that.
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done returns a channel that closes once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) loop(interval time.Duration, fn func()) {
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			// Re-check so a Stop racing a tick wins.
			select {
			case <-t.stop:
				return
			default:
			}
			fn()
		}
	}
}
