package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thedivyam/noon-sde3/pkg/enums"
)

// Toast is a transient two line user notification.
type Toast struct {
	ID        uuid.UUID       `json:"id"`
	Kind      enums.ToastKind `json:"kind"`
	Text1     string          `json:"text1"`
	Text2     string          `json:"text2"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewToast stamps a toast with an id and creation time.
func NewToast(kind enums.ToastKind, text1, text2 string) Toast {
	return Toast{
		ID:        uuid.New(),
		Kind:      kind,
		Text1:     text1,
		Text2:     text2,
		CreatedAt: time.Now().UTC(),
	}
}

// Notifier emits toasts. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}

// Recorder collects toasts in memory; used by tests.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(_ context.Context, toast Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast)
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Last returns the most recent toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Reset drops recorded toasts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}
