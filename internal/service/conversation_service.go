package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"BoleiaWeb/internal/alert"
	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/observability"
	"BoleiaWeb/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ConversationService owns the single open thread: its participant metadata,
// its ordered message list, and the resolved counterpart used as receiver on
// send. State is rebuilt on navigation to a different chat.
type ConversationService struct {
	rest      UpstreamClient
	identity  *Identity
	hints     store.ReceiverHintStore
	alerts    *alert.Bus
	validator *validator.Validate

	mu         sync.Mutex
	view       *model.ConversationView
	receiverID string
}

func NewConversationService(rest UpstreamClient, identity *Identity, hints store.ReceiverHintStore, alerts *alert.Bus, validator *validator.Validate) *ConversationService {
	return &ConversationService{
		rest:      rest,
		identity:  identity,
		hints:     hints,
		alerts:    alerts,
		validator: validator,
	}
}

// Load opens a thread: chat metadata for participants, message history, and
// per-participant name lookups, fetched concurrently. A single failed name
// lookup degrades that one name to its raw id; a failed list or history fetch
// fails the load as a whole.
func (s *ConversationService) Load(ctx context.Context, chatID string) (*model.ConversationView, error) {
	selfID, err := s.identity.SelfID(ctx)
	if err != nil {
		slog.Error("Failed to resolve current user", "error", err)
		return nil, helper.NewBadGatewayError("")
	}

	chats, err := s.rest.ListChats(ctx)
	if err != nil {
		slog.Error("Failed to load chat list", "error", err, "chatID", chatID)
		return nil, helper.NewBadGatewayError("")
	}

	var participantIDs []string
	for _, c := range chats {
		if c.ID == chatID {
			participantIDs = c.Participants
			break
		}
	}

	var wg sync.WaitGroup
	participants := make([]model.Participant, len(participantIDs))
	for i, pid := range participantIDs {
		wg.Add(1)
		go func(i int, pid string) {
			defer wg.Done()
			participants[i] = s.lookupParticipant(ctx, pid)
		}(i, pid)
	}

	var historyPayload interface{}
	var historyErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		historyPayload, historyErr = s.rest.GetChatMessages(ctx, chatID)
	}()
	wg.Wait()

	if historyErr != nil {
		slog.Error("Failed to load chat history", "error", historyErr, "chatID", chatID)
		return nil, helper.NewBadGatewayError("")
	}

	messages := make([]model.Message, 0)
	for _, raw := range helper.ExtractMessages(historyPayload) {
		if msg := helper.NormalizeMessage(raw, helper.NormalizeFallback{SelfID: selfID}); msg != nil {
			messages = append(messages, *msg)
		}
	}
	helper.SortMessagesByTimestamp(messages)

	receiverID := ResolveCounterpart(ctx, chatID, participantIDs, messages, selfID, s.hints)

	s.mu.Lock()
	s.view = &model.ConversationView{
		ChatID:       chatID,
		Participants: participants,
		Messages:     messages,
	}
	s.receiverID = receiverID
	view := s.snapshotLocked()
	s.mu.Unlock()

	return view, nil
}

func (s *ConversationService) lookupParticipant(ctx context.Context, pid string) model.Participant {
	user, err := s.rest.GetUserByID(ctx, pid)
	if err != nil || user.Name == "" {
		// Degrade to the raw id; one failed lookup must not fail the thread.
		return model.Participant{ID: pid, Name: pid}
	}
	return model.Participant{ID: pid, Name: user.Name}
}

// HandleRealtimeEvent merges live messages into the open thread. Events
// addressed to another chat are rejected; events with no chat id are accepted
// opportunistically since some shapes omit it.
func (s *ConversationService) HandleRealtimeEvent(payload interface{}) {
	selfID := s.identity.SelfIDOrEmpty(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil {
		return
	}

	for _, raw := range helper.ExtractMessages(payload) {
		msg := helper.NormalizeMessage(raw, helper.NormalizeFallback{
			SelfID:     selfID,
			ReceiverID: s.receiverID,
		})
		if msg == nil {
			continue
		}
		if msg.ChatID != "" && msg.ChatID != s.view.ChatID {
			continue
		}

		if s.mergeLocked(*msg) {
			observability.MessagesMergedTotal.Inc()
		}

		// A foreign sender is by definition the counterpart; keep the hint
		// fresh for chats that started without metadata.
		if msg.SenderID != "" && msg.SenderID != selfID {
			s.receiverID = msg.SenderID
			s.hints.Set(context.Background(), s.view.ChatID, msg.SenderID)
		}
	}
}

// Merge adds one canonical message to the open thread. Idempotent: a message
// whose id is already present is a no-op, so duplicate delivery from either
// feed is safe.
func (s *ConversationService) Merge(msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return false
	}
	return s.mergeLocked(msg)
}

func (s *ConversationService) mergeLocked(msg model.Message) bool {
	for _, existing := range s.view.Messages {
		if existing.ID == msg.ID {
			return false
		}
	}
	s.view.Messages = append(s.view.Messages, msg)
	helper.SortMessagesByTimestamp(s.view.Messages)
	return true
}

// Send posts the message upstream and optimistically appends it locally with
// a client-generated id, without waiting for any echo. The append is not
// rolled back on later inconsistencies.
func (s *ConversationService) Send(ctx context.Context, req model.SendMessageRequest) (*model.Message, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Struct(req); err != nil {
		return nil, helper.NewBadRequestError("")
	}

	selfID, err := s.identity.SelfID(ctx)
	if err != nil {
		slog.Error("Failed to resolve current user for send", "error", err)
		return nil, helper.NewBadGatewayError("")
	}

	s.mu.Lock()
	if s.view == nil {
		s.mu.Unlock()
		return nil, helper.NewNotFoundError("No open conversation")
	}
	chatID := s.view.ChatID
	receiverID := s.receiverID
	s.mu.Unlock()

	if receiverID == "" {
		s.alerts.Danger("Unable to identify the receiver for this chat.")
		return nil, helper.NewBadRequestError("Unable to identify the receiver for this chat.")
	}

	now := time.Now().Format(time.RFC3339)
	err = s.rest.SendMessage(ctx, model.SendMessagePayload{
		ChatID:     chatID,
		SenderID:   selfID,
		ReceiverID: receiverID,
		Content:    req.Content,
		Timestamp:  now,
	})
	if err != nil {
		slog.Error("Failed to send message", "error", err, "chatID", chatID)
		s.alerts.Danger("Unable to send the message.")
		return nil, helper.NewBadGatewayError("Unable to send the message.")
	}

	optimistic := model.Message{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderID:   selfID,
		ReceiverID: receiverID,
		Content:    req.Content,
		Timestamp:  now,
	}

	s.mu.Lock()
	if s.view != nil && s.view.ChatID == chatID {
		s.mergeLocked(optimistic)
	}
	s.mu.Unlock()

	return &optimistic, nil
}

// ActiveChatID reports the currently open thread, "" when none. The
// notification router uses it to suppress toasts for the visible chat.
func (s *ConversationService) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return ""
	}
	return s.view.ChatID
}

// ClearActive forgets the open thread, e.g. when the user navigates back to
// the inbox.
func (s *ConversationService) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = nil
	s.receiverID = ""
}

// View returns a copy of the open thread state, nil when none is open.
func (s *ConversationService) View() *model.ConversationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ConversationService) snapshotLocked() *model.ConversationView {
	if s.view == nil {
		return nil
	}
	view := &model.ConversationView{
		ChatID:       s.view.ChatID,
		Participants: append([]model.Participant(nil), s.view.Participants...),
		Messages:     append([]model.Message(nil), s.view.Messages...),
	}
	return view
}
