// Package realtimetest provides a Publisher that records changes for tests.
package realtimetest

import (
	"context"
	"sync"

	"housie/internal/realtime"
)

type Recorder struct {
	mu      sync.Mutex
	changes []realtime.Change
	Err     error
}

func (r *Recorder) Publish(_ context.Context, ch realtime.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.changes = append(r.changes, ch)
	return nil
}

func (r *Recorder) Changes() []realtime.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.Change(nil), r.changes...)
}

// Tables lists "table:TYPE" for each recorded change, in order.
func (r *Recorder) Tables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.changes))
	for i, ch := range r.changes {
		out[i] = ch.Table + ":" + string(ch.Type)
	}
	return out
}
