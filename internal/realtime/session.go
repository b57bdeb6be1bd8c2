package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource fetches the realtime auth credential. Backed by the upstream
// REST adapter in production.
type TokenSource interface {
	AuthToken(ctx context.Context) (string, error)
}

// Session is the single owner of the shared transport's connect/disconnect
// lifecycle. Every other component goes through EnsureConnected and must
// never call Disconnect themselves.
type Session struct {
	transport Transport
	tokens    TokenSource

	mu      sync.Mutex
	hooks   map[int]func()
	hookSeq int
}

func NewSession(transport Transport, tokens TokenSource) *Session {
	return &Session{
		transport: transport,
		tokens:    tokens,
		hooks:     make(map[int]func()),
	}
}

func (s *Session) Transport() Transport {
	return s.transport
}

func (s *Session) Connected() bool {
	return s.transport.Connected()
}

// EnsureConnected fetches a token and connects if the transport is down.
// A failed token fetch is not fatal: the connect is still attempted without
// credentials, mirroring how the browser client behaved.
func (s *Session) EnsureConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport.Connected() {
		return nil
	}

	token, err := s.tokens.AuthToken(ctx)
	if err != nil {
		slog.Warn("Failed to fetch realtime auth token, connecting without it", "error", err)
		token = ""
	} else {
		logTokenExpiry(token)
	}

	if err := s.transport.Connect(ctx, token); err != nil {
		slog.Error("Realtime connect failed", "error", err)
		return err
	}

	for _, hook := range s.hooks {
		hook()
	}
	return nil
}

// OnConnect registers a hook invoked after every successful connect, used by
// consumers that need to re-request state lost across a reconnect. Returns
// the unregister function.
func (s *Session) OnConnect(hook func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hookSeq++
	id := s.hookSeq
	s.hooks[id] = hook

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.hooks, id)
	}
}

// Close disconnects the shared transport. Called from exactly one place, at
// process shutdown.
func (s *Session) Close() {
	s.transport.Disconnect()
}

// logTokenExpiry inspects the token's exp claim without verifying the
// signature; verification belongs to the upstream. Purely diagnostic.
func logTokenExpiry(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		slog.Debug("Realtime token is not a parseable JWT", "error", err)
		return
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	if exp.Before(time.Now()) {
		slog.Warn("Realtime auth token already expired", "expiredAt", exp.Time)
		return
	}
	slog.Debug("Realtime auth token fetched", "expiresAt", exp.Time)
}
