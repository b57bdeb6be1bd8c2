package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/observability"
	"BoleiaWeb/internal/realtime"

	"github.com/google/uuid"
)

const (
	maxToasts    = 3
	toastTTL     = 6 * time.Second
	dedupeWindow = 60 * time.Second
)

// NotificationRouter consumes the realtime stream application-wide and
// decides which events become visible toasts. One instance lives for the
// whole process; it subscribes on Start and keeps its subscriptions until
// Close.
type NotificationRouter struct {
	identity   *Identity
	activeChat func() string

	mu     sync.Mutex
	toasts []model.Toast
	timers map[string]*time.Timer
	seen   map[string]time.Time
	ttl    time.Duration
	window time.Duration

	offs []func()
}

func NewNotificationRouter(identity *Identity, activeChat func() string) *NotificationRouter {
	return &NotificationRouter{
		identity:   identity,
		activeChat: activeChat,
		timers:     make(map[string]*time.Timer),
		seen:       make(map[string]time.Time),
		ttl:        toastTTL,
		window:     dedupeWindow,
	}
}

// Start subscribes to the shared transport. The router never connects or
// disconnects it.
func (r *NotificationRouter) Start(transport realtime.Transport) {
	r.offs = append(r.offs,
		transport.On(realtime.EventReceiveMessage, func(payload interface{}) {
			observability.RealtimeEventsTotal.WithLabelValues(realtime.EventReceiveMessage).Inc()
			r.Route(model.ToastKindMessage, payload)
		}),
		transport.On(realtime.EventReceiveNotification, func(payload interface{}) {
			observability.RealtimeEventsTotal.WithLabelValues(realtime.EventReceiveNotification).Inc()
			r.Route(model.ToastKindNotification, payload)
		}),
	)
}

// Route runs one event through the suppression chain: self-authored, active
// thread, duplicate window. Events that survive become toasts.
func (r *NotificationRouter) Route(kind model.ToastKind, payload interface{}) {
	raws := helper.ExtractMessages(payload)
	if len(raws) == 0 {
		return
	}
	raw := raws[0]

	msg := helper.NormalizeMessage(raw, helper.NormalizeFallback{})
	if msg == nil {
		// Notifications without content still render a generic line, so a
		// minimal synthetic record carries the routing fields forward.
		msg = &model.Message{}
		if id, ok := raw["id"].(string); ok {
			msg.ID = id
		}
		if chatID, ok := raw["chatId"].(string); ok {
			msg.ChatID = chatID
		}
		if senderID, ok := raw["senderId"].(string); ok {
			msg.SenderID = senderID
		}
	}

	if selfID := r.identity.SelfIDOrEmpty(context.Background()); selfID != "" && msg.SenderID == selfID {
		observability.ToastsSuppressedTotal.WithLabelValues("self").Inc()
		return
	}

	// Suppress only when the event names the open thread. Events with no
	// chat id at all pass through; they cannot be attributed.
	if active := r.activeChat(); active != "" && msg.ChatID != "" && msg.ChatID == active {
		observability.ToastsSuppressedTotal.WithLabelValues("active_thread").Inc()
		return
	}

	if r.isDuplicate(msg, sourceID(raw)) {
		observability.ToastsSuppressedTotal.WithLabelValues("duplicate").Inc()
		return
	}

	r.push(buildToast(kind, msg))
}

// sourceID returns the event id as supplied by the source, "" when absent.
// A generated id is unique by construction and cannot deduplicate anything.
func sourceID(raw model.RawMessage) string {
	for _, key := range []string{"id", "_id", "messageId"} {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// isDuplicate reports whether an equivalent event was toasted within the
// dedupe window, keyed by the source-supplied id when present, otherwise by
// a composite of chat, sender, timestamp and content.
func (r *NotificationRouter) isDuplicate(msg *model.Message, id string) bool {
	key := id
	if key == "" {
		key = fmt.Sprintf("%s|%s|%s|%s", msg.ChatID, msg.SenderID, msg.Timestamp, msg.Content)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if last, ok := r.seen[key]; ok && now.Sub(last) < r.window {
		return true
	}
	r.seen[key] = now

	for k, at := range r.seen {
		if now.Sub(at) >= r.window {
			delete(r.seen, k)
		}
	}
	return false
}

func buildToast(kind model.ToastKind, msg *model.Message) model.Toast {
	toast := model.Toast{
		ID:   uuid.NewString(),
		Kind: kind,
	}

	if kind == model.ToastKindMessage {
		toast.Title = "New message"
		toast.Description = msg.Content
		if toast.Description == "" {
			toast.Description = "You received a new message."
		}
		toast.ActionLabel = "Open chat"
		toast.ActionHref = "/messages"
		if msg.ChatID != "" {
			toast.ActionHref = "/messages/" + msg.ChatID
		}
		return toast
	}

	toast.Title = "New notification"
	toast.Description = msg.Content
	if toast.Description == "" {
		toast.Description = "You have a new notification."
	}
	return toast
}

func (r *NotificationRouter) push(toast model.Toast) {
	r.mu.Lock()
	r.toasts = append([]model.Toast{toast}, r.toasts...)
	for len(r.toasts) > maxToasts {
		evicted := r.toasts[len(r.toasts)-1]
		r.toasts = r.toasts[:len(r.toasts)-1]
		r.cancelTimerLocked(evicted.ID)
	}
	r.timers[toast.ID] = time.AfterFunc(r.ttl, func() {
		r.Dismiss(toast.ID)
	})
	r.mu.Unlock()

	observability.ToastsPushedTotal.Inc()
}

// Dismiss removes a toast. Expiry and manual dismissal share this path, and
// it cancels the pending timer so a late fire is a no-op.
func (r *NotificationRouter) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelTimerLocked(id)
	for i, toast := range r.toasts {
		if toast.ID == id {
			r.toasts = append(r.toasts[:i], r.toasts[i+1:]...)
			return
		}
	}
}

// Open resolves a toast's navigation target and removes it immediately.
func (r *NotificationRouter) Open(id string) (string, bool) {
	r.mu.Lock()
	var href string
	found := false
	for _, toast := range r.toasts {
		if toast.ID == id {
			href = toast.ActionHref
			found = true
			break
		}
	}
	r.mu.Unlock()

	if !found {
		return "", false
	}
	r.Dismiss(id)
	return href, true
}

func (r *NotificationRouter) Toasts() []model.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Close unsubscribes from the transport and clears all pending expiry timers.
func (r *NotificationRouter) Close() {
	for _, off := range r.offs {
		off()
	}
	r.offs = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.timers {
		r.cancelTimerLocked(id)
	}
	r.toasts = nil
}

func (r *NotificationRouter) cancelTimerLocked(id string) {
	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
}
