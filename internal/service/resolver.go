package service

import (
	"context"

	"BoleiaWeb/internal/model"
	"BoleiaWeb/internal/store"
)

// ResolveCounterpart determines the other participant of a two-party
// conversation, preferring in order: the chat's declared participants minus
// self, the first foreign sender in history, the first foreign receiver, the
// receiver of a self-sent message, and finally the stored session hint.
// Returns "" when no signal exists; callers must treat that as "cannot send
// yet" rather than guessing.
func ResolveCounterpart(ctx context.Context, chatID string, participants []string, messages []model.Message, selfID string, hints store.ReceiverHintStore) string {
	if resolved := resolveLive(participants, messages, selfID); resolved != "" {
		// Refresh the hint so future soft failures fall back to the latest
		// known counterpart.
		hints.Set(ctx, chatID, resolved)
		return resolved
	}

	return hints.Get(ctx, chatID)
}

func resolveLive(participants []string, messages []model.Message, selfID string) string {
	for _, p := range participants {
		if p != "" && p != selfID {
			return p
		}
	}

	for _, m := range messages {
		if m.SenderID != "" && m.SenderID != selfID {
			return m.SenderID
		}
	}
	for _, m := range messages {
		if m.ReceiverID != "" && m.ReceiverID != selfID {
			return m.ReceiverID
		}
	}
	for _, m := range messages {
		if m.SenderID == selfID && m.ReceiverID != "" {
			return m.ReceiverID
		}
	}

	return ""
}
