package alert

import (
	"sync"
	"time"

	"BoleiaWeb/internal/model"

	"github.com/google/uuid"
)

const (
	maxAlerts = 3
	alertTTL  = 6 * time.Second
)

// Toaster holds the visible alert list: newest first, capped, each entry
// self-expiring. Expiry and manual dismissal share one removal path so a
// pending timer never fires against an already-removed entry.
type Toaster struct {
	mu     sync.Mutex
	items  []model.Alert
	timers map[string]*time.Timer
	ttl    time.Duration
	off    func()
}

func NewToaster(bus *Bus) *Toaster {
	t := &Toaster{
		timers: make(map[string]*time.Timer),
		ttl:    alertTTL,
	}
	t.off = bus.Subscribe(t.push)
	return t
}

func (t *Toaster) push(alertType model.AlertType, message string) {
	item := model.Alert{
		ID:      uuid.NewString(),
		Type:    alertType,
		Message: message,
	}

	t.mu.Lock()
	t.items = append([]model.Alert{item}, t.items...)
	for len(t.items) > maxAlerts {
		evicted := t.items[len(t.items)-1]
		t.items = t.items[:len(t.items)-1]
		t.cancelTimerLocked(evicted.ID)
	}
	t.timers[item.ID] = time.AfterFunc(t.ttl, func() {
		t.Remove(item.ID)
	})
	t.mu.Unlock()
}

func (t *Toaster) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelTimerLocked(id)
	for i, item := range t.items {
		if item.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

func (t *Toaster) Alerts() []model.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Alert, len(t.items))
	copy(out, t.items)
	return out
}

// Close unsubscribes from the bus and clears every pending expiry timer.
func (t *Toaster) Close() {
	t.off()

	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.timers {
		t.cancelTimerLocked(id)
	}
	t.items = nil
}

func (t *Toaster) cancelTimerLocked(id string) {
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
}
