// Package notificationtest provides a recording notification.Emitter.
package notificationtest

import (
	"context"
	"sync"

	"github.com/carepoint/portal/internal/platform/notification"
)

// Recorder keeps every notice it is given.
type Recorder struct {
	mu      sync.Mutex
	notices []notification.Notice
}

func (r *Recorder) Emit(_ context.Context, n notification.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []notification.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Templates returns the template id of every recorded notice, in order.
func (r *Recorder) Templates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Template
	}
	return out
}
