package notifications

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/thedivyam/noon-sde3/pkg/logger"
)

const defaultBuffer = 16

// Hub logs every toast and fans it out to live subscribers (the SSE stream).
// A subscriber whose buffer is full misses the toast rather than blocking the sender.
type Hub struct {
	logg   *logger.Logger
	buffer int

	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan Toast
	closed      bool
}

// NewHub builds a hub whose subscriber channels hold buffer toasts.
func NewHub(logg *logger.Logger, buffer int) *Hub {
	if logg == nil {
		logg = logger.Nop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		logg:        logg,
		buffer:      buffer,
		subscribers: make(map[uuid.UUID]chan Toast),
	}
}

// Notify implements Notifier.
func (h *Hub) Notify(ctx context.Context, toast Toast) {
	ctx = h.logg.WithFields(ctx, map[string]any{
		"toast_kind":  toast.Kind.String(),
		"toast_text1": toast.Text1,
		"toast_text2": toast.Text2,
	})
	h.logg.Info(ctx, "toast emitted")

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for id, ch := range h.subscribers {
		select {
		case ch <- toast:
		default:
			h.logg.Warn(h.logg.WithField(ctx, "subscriber_id", id.String()), "subscriber buffer full; toast dropped")
		}
	}
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (uuid.UUID, <-chan Toast, func()) {
	id := uuid.New()
	ch := make(chan Toast, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if existing, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(existing)
			}
		})
	}
	return id, ch, cancel
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}
