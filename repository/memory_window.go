package repository

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count       int
	windowStart time.Time
}

// MemoryWindow is a process-local window counter table. It is bounded:
// when capacity is reached, expired windows are swept first and the
// oldest live window is dropped if the sweep freed nothing.
type MemoryWindow struct {
	lock     sync.Mutex
	windows  map[string]*window
	capacity int
	now      func() time.Time
}

func NewMemoryWindow(capacity int) *MemoryWindow {
	return &MemoryWindow{
		windows:  map[string]*window{},
		capacity: capacity,
		now:      time.Now,
	}
}

func (r *MemoryWindow) Increment(_ context.Context, identity string, windowLength time.Duration) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := r.now()
	w, ok := r.windows[identity]
	if !ok || now.Sub(w.windowStart) > windowLength {
		if !ok && len(r.windows) >= r.capacity {
			r.evict(now, windowLength)
		}
		w = &window{windowStart: now}
		r.windows[identity] = w
	}
	w.count++

	return w.count, nil
}

func (r *MemoryWindow) evict(now time.Time, windowLength time.Duration) {
	for identity, w := range r.windows {
		if now.Sub(w.windowStart) > windowLength {
			delete(r.windows, identity)
		}
	}
	if len(r.windows) < r.capacity {
		return
	}

	oldestIdentity := ""
	oldestStart := time.Time{}
	for identity, w := range r.windows {
		if oldestIdentity == "" || w.windowStart.Before(oldestStart) {
			oldestIdentity = identity
			oldestStart = w.windowStart
		}
	}
	delete(r.windows, oldestIdentity)
}
