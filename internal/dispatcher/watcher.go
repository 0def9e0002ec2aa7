// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package dispatcher

import (
	"sync"

	"gopkg.in/tomb.v2"
)

// ChangeWatcher passes on changes of the store. Changes that arrive
// while one is still pending are coalesced into the latest.
type ChangeWatcher struct {
	tomb    tomb.Tomb
	changes chan Change
	// We can't send down a closed channel, so protect the sending
	// with a mutex and bool.
	closed bool
	mu     sync.Mutex

	operations map[string]bool
	latest     Change
}

// Watch returns a watcher for changes made by the named operations, or
// by any operation when none are named.
func (d *Dispatcher) Watch(operations ...string) *ChangeWatcher {
	w := &ChangeWatcher{
		changes: make(chan Change, 1),
	}
	if len(operations) > 0 {
		w.operations = make(map[string]bool)
		for _, name := range operations {
			w.operations[name] = true
		}
	}
	unsub := d.Subscribe(w.onChange)
	w.tomb.Go(func() error {
		<-w.tomb.Dying()
		unsub()
		return nil
	})
	return w
}

// Changes returns the channel the changes are sent on. It is closed when
// the watcher is killed.
func (w *ChangeWatcher) Changes() <-chan Change {
	return w.changes
}

// Kill is part of the worker.Worker interface.
func (w *ChangeWatcher) Kill() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	// The watcher must be dying before the channel is closed, otherwise
	// readers could see a closed channel while the tomb says alive.
	w.tomb.Kill(nil)
	w.closed = true
	close(w.changes)
}

// Wait is part of the worker.Worker interface.
func (w *ChangeWatcher) Wait() error {
	return w.tomb.Wait()
}

// Stop kills the watcher and waits for it to finish.
func (w *ChangeWatcher) Stop() error {
	w.Kill()
	return w.Wait()
}

func (w *ChangeWatcher) onChange(change Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.operations != nil && !w.operations[change.Operation] {
		return
	}
	if change.Revision <= w.latest.Revision {
		return
	}
	w.latest = change
	// Replace a pending change rather than block the hub.
	select {
	case <-w.changes:
	default:
	}
	w.changes <- change
}
