package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/store"

	"github.com/go-playground/validator/v10"
)

// InboxService builds the conversation list: one row per chat, annotated with
// the resolved counterpart and the most recent message.
type InboxService struct {
	rest      UpstreamClient
	identity  *Identity
	hints     store.ReceiverHintStore
	validator *validator.Validate

	mu           sync.Mutex
	placeholders map[string]model.ConversationRow
}

func NewInboxService(rest UpstreamClient, identity *Identity, hints store.ReceiverHintStore, validator *validator.Validate) *InboxService {
	return &InboxService{
		rest:         rest,
		identity:     identity,
		hints:        hints,
		validator:    validator,
		placeholders: make(map[string]model.ConversationRow),
	}
}

func (s *InboxService) BuildRows(ctx context.Context) ([]model.ConversationRow, error) {
	selfID, err := s.identity.SelfID(ctx)
	if err != nil {
		slog.Error("Failed to resolve current user for inbox", "error", err)
		return nil, helper.NewBadGatewayError("")
	}

	chats, err := s.rest.ListChats(ctx)
	if err != nil {
		slog.Error("Failed to load chats", "error", err)
		return nil, helper.NewBadGatewayError("")
	}

	rows := make([]model.ConversationRow, len(chats))
	var wg sync.WaitGroup
	for i, chat := range chats {
		wg.Add(1)
		go func(i int, chat model.Chat) {
			defer wg.Done()
			rows[i] = s.buildRow(ctx, chat, selfID)
		}(i, chat)
	}
	wg.Wait()

	s.prunePlaceholders(chats)
	rows = append(rows, s.pendingPlaceholders()...)

	// Keep the counterpart hint warm for every row that resolved one, so
	// opening a message-less chat still knows who to send to.
	for _, row := range rows {
		for _, p := range row.Participants {
			if p.ID != selfID && p.ID != "" {
				s.hints.Set(ctx, row.ChatID, p.ID)
				break
			}
		}
	}

	return rows, nil
}

func (s *InboxService) buildRow(ctx context.Context, chat model.Chat, selfID string) model.ConversationRow {
	participants := make([]model.Participant, len(chat.Participants))
	var wg sync.WaitGroup
	for i, pid := range chat.Participants {
		wg.Add(1)
		go func(i int, pid string) {
			defer wg.Done()
			user, err := s.rest.GetUserByID(ctx, pid)
			if err != nil || user.Name == "" {
				participants[i] = model.Participant{ID: pid, Name: pid}
				return
			}
			participants[i] = model.Participant{ID: pid, Name: user.Name}
		}(i, pid)
	}
	wg.Wait()

	return model.ConversationRow{
		ChatID:       chat.ID,
		Participants: participants,
		DisplayName:  displayName(participants, selfID),
		LastMessage:  lastMessage(chat.Messages, selfID),
	}
}

// displayName highlights the counterpart; for malformed rows it falls back to
// the first participant, then to a generic label.
func displayName(participants []model.Participant, selfID string) string {
	for _, p := range participants {
		if p.ID != selfID {
			return p.Name
		}
	}
	if len(participants) > 0 {
		return participants[0].Name
	}
	return "Chat"
}

// lastMessage picks the entry with the maximum parsed timestamp. Ties are not
// specially broken; any maximal entry is acceptable.
func lastMessage(raws []model.RawMessage, selfID string) *model.LastMessage {
	var latest *model.Message
	var latestTs int64
	for _, raw := range raws {
		msg := helper.NormalizeMessage(raw, helper.NormalizeFallback{SelfID: selfID})
		if msg == nil {
			continue
		}
		ts := helper.ParseTimestamp(msg.Timestamp)
		if latest == nil || ts > latestTs {
			latest = msg
			latestTs = ts
		}
	}
	if latest == nil {
		return nil
	}
	return &model.LastMessage{
		Content:   latest.Content,
		Timestamp: latest.Timestamp,
	}
}

// FilterRows keeps rows whose counterpart name or last-message content
// contains the term, case-insensitively. An empty term keeps everything.
func FilterRows(rows []model.ConversationRow, term string) []model.ConversationRow {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}

	filtered := make([]model.ConversationRow, 0, len(rows))
	for _, row := range rows {
		name := strings.ToLower(row.DisplayName)
		content := ""
		if row.LastMessage != nil {
			content = strings.ToLower(row.LastMessage.Content)
		}
		if strings.Contains(name, term) || strings.Contains(content, term) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// StartChat finds the existing chat for {self, target} or creates one
// upstream. Near-simultaneous starts can both miss the lookup and create
// duplicates; uniqueness for the pair is a backend concern.
func (s *InboxService) StartChat(ctx context.Context, req model.StartChatRequest) (*model.StartChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, helper.NewBadRequestError("")
	}

	selfID, err := s.identity.SelfID(ctx)
	if err != nil {
		return nil, helper.NewBadGatewayError("")
	}
	if req.TargetUserID == selfID {
		return nil, helper.NewBadRequestError("Cannot start a chat with yourself")
	}

	chats, err := s.rest.ListChats(ctx)
	if err != nil {
		slog.Error("Failed to load chats for find-or-create", "error", err)
		return nil, helper.NewBadGatewayError("")
	}

	for _, chat := range chats {
		if samePair(chat.Participants, selfID, req.TargetUserID) {
			s.hints.Set(ctx, chat.ID, req.TargetUserID)
			return &model.StartChatResponse{ChatID: chat.ID, Created: false}, nil
		}
	}

	created, err := s.rest.CreateChat(ctx, []string{selfID, req.TargetUserID})
	if err != nil {
		slog.Error("Failed to create chat", "error", err, "targetUserID", req.TargetUserID)
		return nil, helper.NewBadGatewayError("Unable to start the chat")
	}

	s.hints.Set(ctx, created.ID, req.TargetUserID)
	s.addPlaceholder(created.ID, selfID, req.TargetUserID)

	return &model.StartChatResponse{ChatID: created.ID, Created: true}, nil
}

// samePair reports whether participants is exactly the unordered pair {a, b}.
func samePair(participants []string, a, b string) bool {
	if len(participants) != 2 {
		return false
	}
	return (participants[0] == a && participants[1] == b) ||
		(participants[0] == b && participants[1] == a)
}

// addPlaceholder keeps a local row for a freshly created chat until the
// upstream list starts including it.
func (s *InboxService) addPlaceholder(chatID, selfID, targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placeholders[chatID] = model.ConversationRow{
		ChatID: chatID,
		Participants: []model.Participant{
			{ID: selfID, Name: selfID},
			{ID: targetID, Name: targetID},
		},
		DisplayName: targetID,
	}
}

func (s *InboxService) prunePlaceholders(chats []model.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chat := range chats {
		delete(s.placeholders, chat.ID)
	}
}

func (s *InboxService) pendingPlaceholders() []model.ConversationRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ConversationRow, 0, len(s.placeholders))
	for _, row := range s.placeholders {
		out = append(out, row)
	}
	return out
}
