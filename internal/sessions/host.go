package sessions

import (
	"context"
	"time"

	"mockinterview/internal/clock"
	"mockinterview/internal/logging"
	"mockinterview/internal/notifications"
	"mockinterview/internal/orchestrator"
)

const notifyTimeout = 15 * time.Second

// host adapts one orchestrator's callbacks to the registry's publisher and
// notifier. It never blocks the orchestrator loop.
type host struct {
	registry *Registry
	entry    *entry
}

func (h *host) NavigateTo(view orchestrator.View, sessionID string) {
	h.registry.logger.Debug("navigate",
		logging.String("view", string(view)),
		logging.String(logging.FieldSessionID, sessionID),
	)
}

func (h *host) Publish(event orchestrator.Event) {
	if p := h.registry.opts.Publisher; p != nil {
		p.Publish(event)
	}
	switch event.Type {
	case orchestrator.EventSessionStarted:
		h.notify(notifications.EventSessionStarted, notifications.Payload{
			"candidate": h.entry.candidate,
			"userId":    event.UserID,
			"role":      h.entry.role,
			"questions": h.entry.questions,
		})
	case orchestrator.EventSessionCompleted:
		payload := notifications.Payload{
			"candidate": h.entry.candidate,
			"userId":    event.UserID,
			"role":      h.entry.role,
			"elapsed":   clock.FormatElapsed(event.Seconds),
		}
		if event.Evaluation != nil {
			payload["overall"] = event.Evaluation.Overall
		}
		h.notify(notifications.EventSessionCompleted, payload)
	case orchestrator.EventDeviceUnavailable:
		h.notify(notifications.EventDeviceUnavailable, notifications.Payload{
			"candidate": h.entry.candidate,
			"userId":    event.UserID,
			"error":     event.Error,
		})
	case orchestrator.EventError:
		h.notify(notifications.EventError, notifications.Payload{
			"context": "session " + event.SessionID,
			"error":   event.Error,
		})
	}
}

func (h *host) notify(event notifications.Event, payload notifications.Payload) {
	r := h.registry
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := r.opts.Notifier.Publish(ctx, event, payload); err != nil {
			logging.WarnWithContext(r.logger, "notification failed", "notification_failed",
				logging.String("event", string(event)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "recruiters were not notified"),
			)
		}
	}()
}
