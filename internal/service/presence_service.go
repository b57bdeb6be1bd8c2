package service

import (
	"context"
	"log/slog"
	"sync"

	"BoleiaWeb/internal/observability"
	"BoleiaWeb/internal/realtime"
)

// PresenceService tracks the live online-user count. It stores the latest
// reported value verbatim, with no smoothing.
type PresenceService struct {
	session *realtime.Session

	mu        sync.Mutex
	count     int
	haveCount bool

	offs []func()
}

func NewPresenceService(session *realtime.Session) *PresenceService {
	return &PresenceService{session: session}
}

// Start subscribes to online-users events, connects the shared transport if
// it is down, and requests a fresh count. A connect failure only logs; the
// count stays absent until a later successful connect.
func (s *PresenceService) Start(ctx context.Context) {
	transport := s.session.Transport()

	s.offs = append(s.offs,
		transport.On(realtime.EventOnlineUsers, s.handleOnlineUsers),
		s.session.OnConnect(s.requestCount),
	)

	// A fresh connect fires the hook, which already requests a count; only an
	// already-up transport needs the explicit request.
	if s.session.Connected() {
		s.requestCount()
		return
	}
	if err := s.session.EnsureConnected(ctx); err != nil {
		slog.Warn("Presence counter starting without a live connection", "error", err)
	}
}

func (s *PresenceService) handleOnlineUsers(payload interface{}) {
	observability.RealtimeEventsTotal.WithLabelValues(realtime.EventOnlineUsers).Inc()

	data, ok := payload.(map[string]interface{})
	if !ok {
		return
	}
	count, ok := data["count"].(float64)
	if !ok {
		return
	}

	s.mu.Lock()
	s.count = int(count)
	s.haveCount = true
	s.mu.Unlock()

	observability.UsersOnline.Set(count)
}

func (s *PresenceService) requestCount() {
	if err := s.session.Transport().Emit(realtime.EventGetOnlineUsers, nil); err != nil {
		slog.Debug("Failed to request online user count", "error", err)
	}
}

// Count returns the latest count and whether one has been received yet.
func (s *PresenceService) Count() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, s.haveCount
}

func (s *PresenceService) Connected() bool {
	return s.session.Connected()
}

// Close unsubscribes only. The shared transport stays up for the other
// consumers; its lifecycle belongs to the session owner.
func (s *PresenceService) Close() {
	for _, off := range s.offs {
		off()
	}
	s.offs = nil
}
