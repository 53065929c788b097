package notify

import (
	"errors"
	"log/slog"

	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/push"
	"github.com/pmelhus/homequest/internal/store"
	"github.com/pmelhus/homequest/internal/websocket"
)

// Notifier publishes persisted notifications to live clients: a targeted
// websocket message plus best-effort web push to the recipient's devices.
// The engines write notification rows inside their transactions and hand the
// committed rows here; delivery failures are logged, never surfaced.
type Notifier struct {
	hub    *websocket.Hub
	push   *push.Service
	subs   *store.PushStore
	logger *slog.Logger
}

// New creates a Notifier. pushSvc may be nil when VAPID keys are not
// configured; web push is then skipped.
func New(hub *websocket.Hub, pushSvc *push.Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{hub: hub, push: pushSvc, subs: subs, logger: logger}
}

// Announce publishes a single committed notification.
func (n *Notifier) Announce(notif *model.Notification) {
	if notif == nil {
		return
	}

	if n.hub != nil {
		n.hub.Broadcast(websocket.NewUserMessage("notification", "created", notif.ID, notif.UserID, map[string]any{
			"notification_type": string(notif.Type),
		}))
	}

	if n.push == nil {
		return
	}

	subs, err := n.subs.ListByUser(notif.UserID)
	if err != nil {
		n.logger.Error("list push subscriptions", "user_id", notif.UserID, "error", err)
		return
	}

	payload := push.Payload{
		Title: notif.Title,
		Body:  notif.Message,
		Tag:   string(notif.Type),
	}

	for i := range subs {
		if err := n.push.Send(&subs[i], payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				if err := n.subs.DeleteByEndpoint(subs[i].Endpoint); err != nil {
					n.logger.Error("prune expired push subscription", "error", err)
				}
				continue
			}
			n.logger.Error("send push", "user_id", notif.UserID, "error", err)
		}
	}
}

// AnnounceAll publishes a batch of committed notifications.
func (n *Notifier) AnnounceAll(notifs []model.Notification) {
	for i := range notifs {
		n.Announce(&notifs[i])
	}
}
