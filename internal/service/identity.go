package service

import (
	"context"
	"sync"
)

// Identity caches the signed-in user's id after the first successful lookup.
// Shared by every component that needs to answer "is this me".
type Identity struct {
	rest UpstreamClient

	mu sync.Mutex
	id string
}

func NewIdentity(rest UpstreamClient) *Identity {
	return &Identity{rest: rest}
}

func (i *Identity) SelfID(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id, nil
	}

	id, err := i.rest.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	i.id = id
	return id, nil
}

// SelfIDOrEmpty is for consumers that treat an unknown identity as a soft
// condition, like the notification router before login resolves.
func (i *Identity) SelfIDOrEmpty(ctx context.Context) string {
	id, err := i.SelfID(ctx)
	if err != nil {
		return ""
	}
	return id
}
