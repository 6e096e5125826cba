package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/internal/notifications"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

const heartbeatInterval = 15 * time.Second

type toastSubscriber interface {
	Subscribe() (uuid.UUID, <-chan notifications.Toast, func())
}

// NotificationsStream relays toasts as server-sent events until the client
// disconnects or the hub closes.
func NotificationsStream(hub toastSubscriber, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications unavailable"))
			return
		}
		rc := http.NewResponseController(w)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		id, toasts, cancel := hub.Subscribe()
		defer cancel()

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithField(ctx, "subscriber_id", id.String())
			logg.Info(ctx, "notifications.subscribed")
		}

		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":%q}\n\n", id.String()); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			if logg != nil {
				logg.Error(ctx, "notifications.flush_unsupported", err)
			}
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				if logg != nil {
					logg.Info(ctx, "notifications.unsubscribed")
				}
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				_ = rc.Flush()
			case toast, ok := <-toasts:
				if !ok {
					return
				}
				data, err := json.Marshal(toast)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "notifications.encode_failed", err)
					}
					continue
				}
				if _, err := fmt.Fprintf(w, "id: %s\nevent: toast\ndata: %s\n\n", toast.ID, data); err != nil {
					return
				}
				_ = rc.Flush()
			}
		}
	}
}
