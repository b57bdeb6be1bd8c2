package service

import (
	"context"

	"BoleiaWeb/internal/model"
)

// UpstreamClient is the REST collaborator surface the core consumes,
// implemented by adapter.RestAdapter.
type UpstreamClient interface {
	ListChats(ctx context.Context) ([]model.Chat, error)
	GetChatMessages(ctx context.Context, chatID string) (interface{}, error)
	CreateChat(ctx context.Context, participants []string) (*model.Chat, error)
	SendMessage(ctx context.Context, payload model.SendMessagePayload) error
	CurrentUserID(ctx context.Context) (string, error)
	GetUserByID(ctx context.Context, id string) (*model.UserDTO, error)
}
