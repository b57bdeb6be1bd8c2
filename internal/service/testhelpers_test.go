package service

import (
	"context"
	"fmt"
	"sync"

	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/realtime"
)

// fakeUpstream is an in-memory UpstreamClient.
type fakeUpstream struct {
	mu sync.Mutex

	selfID  string
	selfErr error

	chats    []model.Chat
	chatsErr error

	history    interface{}
	historyErr error

	users     map[string]string
	failUsers map[string]bool

	sendErr error
	sent    []model.SendMessagePayload

	created   *model.Chat
	createErr error
}

func (f *fakeUpstream) ListChats(_ context.Context) ([]model.Chat, error) {
	return f.chats, f.chatsErr
}

func (f *fakeUpstream) GetChatMessages(_ context.Context, _ string) (interface{}, error) {
	return f.history, f.historyErr
}

func (f *fakeUpstream) CreateChat(_ context.Context, participants []string) (*model.Chat, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.created != nil {
		return f.created, nil
	}
	return &model.Chat{ID: "created-1", Participants: participants}, nil
}

func (f *fakeUpstream) SendMessage(_ context.Context, payload model.SendMessagePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeUpstream) CurrentUserID(_ context.Context) (string, error) {
	return f.selfID, f.selfErr
}

func (f *fakeUpstream) GetUserByID(_ context.Context, id string) (*model.UserDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers[id] {
		return nil, fmt.Errorf("lookup failed for %s", id)
	}
	if name, ok := f.users[id]; ok {
		return &model.UserDTO{ID: id, Name: name}, nil
	}
	return nil, fmt.Errorf("unknown user %s", id)
}

// fakeTransport is an in-process realtime.Transport that lets tests fire
// events at registered handlers.
type fakeTransport struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	handlers   map[string]map[int]realtime.Handler
	nextID     int
	emitted    []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]map[int]realtime.Handler)}
}

func (f *fakeTransport) Connect(_ context.Context, _ string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
}

func (f *fakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) On(event string, handler realtime.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers[event] == nil {
		f.handlers[event] = make(map[int]realtime.Handler)
	}
	f.nextID++
	id := f.nextID
	f.handlers[event][id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers[event], id)
	}
}

func (f *fakeTransport) Emit(event string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return fmt.Errorf("not connected")
	}
	f.emitted = append(f.emitted, event)
	return nil
}

func (f *fakeTransport) Fire(event string, payload interface{}) {
	f.mu.Lock()
	registered := make([]realtime.Handler, 0, len(f.handlers[event]))
	for _, h := range f.handlers[event] {
		registered = append(registered, h)
	}
	f.mu.Unlock()

	for _, h := range registered {
		h(payload)
	}
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) AuthToken(_ context.Context) (string, error) {
	return f.token, f.err
}
