package alert

import (
	"sync"

	"BoleiaWeb/internal/model"
)

// Listener consumes broadcast alerts.
type Listener func(alertType model.AlertType, message string)

// Bus is the application-wide alert channel. Producers broadcast without any
// reference to the toaster consuming on the other end.
type Bus struct {
	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

func (b *Bus) Subscribe(listener Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[id] = listener

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *Bus) Broadcast(alertType model.AlertType, message string) {
	if message == "" {
		return
	}

	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(alertType, message)
	}
}

func (b *Bus) Success(message string) {
	b.Broadcast(model.AlertSuccess, message)
}

func (b *Bus) Danger(message string) {
	b.Broadcast(model.AlertDanger, message)
}
