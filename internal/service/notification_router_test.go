package service

import (
	"testing"
	"time"

	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(selfID, activeChatID string) *NotificationRouter {
	rest := &fakeUpstream{selfID: selfID}
	return NewNotificationRouter(NewIdentity(rest), func() string { return activeChatID })
}

func messageEvent(id, chatID, senderID, content string) map[string]interface{} {
	event := map[string]interface{}{"content": content}
	if id != "" {
		event["id"] = id
	}
	if chatID != "" {
		event["chatId"] = chatID
	}
	if senderID != "" {
		event["senderId"] = senderID
	}
	return event
}

func TestNotificationRouterRoute(t *testing.T) {
	t.Run("Foreign Message Becomes Toast", func(t *testing.T) {
		r := newRouter("U1", "")
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "boleia às 9?"))

		toasts := r.Toasts()
		require.Len(t, toasts, 1)
		assert.Equal(t, model.ToastKindMessage, toasts[0].Kind)
		assert.Equal(t, "New message", toasts[0].Title)
		assert.Equal(t, "boleia às 9?", toasts[0].Description)
		assert.Equal(t, "Open chat", toasts[0].ActionLabel)
		assert.Equal(t, "/messages/7", toasts[0].ActionHref)
	})

	t.Run("Self Authored Dropped", func(t *testing.T) {
		r := newRouter("U1", "")
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U1", "my own echo"))
		assert.Empty(t, r.Toasts())
	})

	t.Run("Active Thread Suppressed", func(t *testing.T) {
		r := newRouter("U1", "7")
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "already on screen"))
		assert.Empty(t, r.Toasts())

		r.Route(model.ToastKindMessage, messageEvent("m2", "9", "U2", "other thread"))
		assert.Len(t, r.Toasts(), 1)
	})

	t.Run("No Chat ID Passes Even With Active Thread", func(t *testing.T) {
		r := newRouter("U1", "7")
		r.Route(model.ToastKindMessage, messageEvent("m1", "", "U2", "unattributable"))
		assert.Len(t, r.Toasts(), 1)
	})

	t.Run("Duplicate ID Within Window Suppressed", func(t *testing.T) {
		r := newRouter("U1", "")
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "once"))
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "once"))
		assert.Len(t, r.Toasts(), 1)
	})

	t.Run("Same ID After Window Toasts Again", func(t *testing.T) {
		r := newRouter("U1", "")
		r.window = 10 * time.Millisecond
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "again"))
		time.Sleep(20 * time.Millisecond)
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "again"))
		assert.Len(t, r.Toasts(), 2)
	})

	t.Run("Composite Key When No ID", func(t *testing.T) {
		r := newRouter("U1", "")
		event := map[string]interface{}{
			"chatId": "7", "senderId": "U2", "content": "no id", "timestamp": "2026-08-30T10:00:00Z",
		}
		r.Route(model.ToastKindMessage, event)
		r.Route(model.ToastKindMessage, event)
		assert.Len(t, r.Toasts(), 1)
	})

	t.Run("Newest First Capped At Three", func(t *testing.T) {
		r := newRouter("U1", "")
		for i, id := range []string{"a", "b", "c", "d", "e"} {
			r.Route(model.ToastKindMessage, messageEvent(id, "7", "U2", string(rune('a'+i))))
		}

		toasts := r.Toasts()
		require.Len(t, toasts, 3)
		assert.Equal(t, "e", toasts[0].Description)
		assert.Equal(t, "d", toasts[1].Description)
		assert.Equal(t, "c", toasts[2].Description)
	})

	t.Run("Contentless Notification Gets Generic Line", func(t *testing.T) {
		r := newRouter("U1", "")
		r.Route(model.ToastKindNotification, map[string]interface{}{"id": "n1", "senderId": "U2"})

		toasts := r.Toasts()
		require.Len(t, toasts, 1)
		assert.Equal(t, "New notification", toasts[0].Title)
		assert.Equal(t, "You have a new notification.", toasts[0].Description)
		assert.Empty(t, toasts[0].ActionLabel)
	})
}

func TestNotificationRouterLifecycle(t *testing.T) {
	t.Run("Toast Expires After TTL", func(t *testing.T) {
		r := newRouter("U1", "")
		r.ttl = 30 * time.Millisecond
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "fleeting"))
		require.Len(t, r.Toasts(), 1)

		assert.Eventually(t, func() bool {
			return len(r.Toasts()) == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Dismiss Removes And Double Dismiss Is Noop", func(t *testing.T) {
		r := newRouter("U1", "")
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "bye"))
		id := r.Toasts()[0].ID

		r.Dismiss(id)
		assert.Empty(t, r.Toasts())
		r.Dismiss(id)
		assert.Empty(t, r.Toasts())
	})

	t.Run("Open Returns Href And Removes", func(t *testing.T) {
		r := newRouter("U1", "")
		r.Route(model.ToastKindMessage, messageEvent("m1", "7", "U2", "go"))
		id := r.Toasts()[0].ID

		href, ok := r.Open(id)
		assert.True(t, ok)
		assert.Equal(t, "/messages/7", href)
		assert.Empty(t, r.Toasts())

		_, ok = r.Open(id)
		assert.False(t, ok)
	})

	t.Run("Start Subscribes And Close Unsubscribes", func(t *testing.T) {
		r := newRouter("U1", "")
		transport := newFakeTransport()
		r.Start(transport)

		transport.Fire(realtime.EventReceiveMessage, messageEvent("m1", "7", "U2", "via transport"))
		assert.Len(t, r.Toasts(), 1)

		transport.Fire(realtime.EventReceiveNotification, map[string]interface{}{"id": "n1", "content": "heads up"})
		assert.Len(t, r.Toasts(), 2)

		r.Close()
		transport.Fire(realtime.EventReceiveMessage, messageEvent("m2", "7", "U2", "after close"))
		assert.Empty(t, r.Toasts())
	})
}
