package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"BoleiaWeb/internal/config"
	"BoleiaWeb/internal/helper"
	"BoleiaWeb/internal/model"
)

// RestAdapter is the typed client for the upstream ride-share API. It is the
// only place that knows the upstream paths and response wrappers; callers get
// DTOs or, for message history, the raw decoded payload for the normalizer.
type RestAdapter struct {
	baseURL    string
	httpClient *http.Client
}

func NewRestAdapter(cfg *config.AppConfig, httpClient *http.Client) *RestAdapter {
	return &RestAdapter{
		baseURL:    strings.TrimRight(cfg.UpstreamAPIURL, "/"),
		httpClient: httpClient,
	}
}

func (a *RestAdapter) ListChats(ctx context.Context) ([]model.Chat, error) {
	body, err := a.getWithRetry(ctx, "/chats")
	if err != nil {
		return nil, err
	}

	var chats []model.Chat
	if err := reencode(unwrapData(body), &chats); err != nil {
		return nil, fmt.Errorf("decode chat list: %w", err)
	}
	return chats, nil
}

// GetChatMessages returns the decoded history payload as-is. The upstream
// wraps it inconsistently, so shape handling belongs to helper.ExtractMessages.
func (a *RestAdapter) GetChatMessages(ctx context.Context, chatID string) (interface{}, error) {
	body, err := a.getWithRetry(ctx, "/messages/chat/"+url.PathEscape(chatID))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (a *RestAdapter) CreateChat(ctx context.Context, participants []string) (*model.Chat, error) {
	body, err := a.post(ctx, "/chats", map[string]interface{}{
		"participants": participants,
	})
	if err != nil {
		return nil, err
	}

	var chat model.Chat
	if err := reencode(unwrapData(body), &chat); err != nil {
		return nil, fmt.Errorf("decode created chat: %w", err)
	}
	if chat.ID == "" {
		return nil, fmt.Errorf("created chat has no id")
	}
	return &chat, nil
}

// SendMessage is fire-and-forget from the UI perspective; only success or
// failure is consumed, never the response payload. No retry, a repeated POST
// would duplicate the message upstream.
func (a *RestAdapter) SendMessage(ctx context.Context, payload model.SendMessagePayload) error {
	_, err := a.post(ctx, "/messages", payload)
	return err
}

func (a *RestAdapter) CurrentUserID(ctx context.Context) (string, error) {
	body, err := a.getWithRetry(ctx, "/auth/userid")
	if err != nil {
		return "", err
	}

	id := scalarOrField(unwrapData(body), "id", "userId")
	if id == "" {
		return "", fmt.Errorf("no user id in response")
	}
	return id, nil
}

func (a *RestAdapter) GetUserByID(ctx context.Context, id string) (*model.UserDTO, error) {
	body, err := a.getWithRetry(ctx, "/users/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var user model.UserDTO
	if err := reencode(unwrapData(body), &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		user.ID = id
	}
	return &user, nil
}

// AuthToken fetches the credential for the realtime handshake.
func (a *RestAdapter) AuthToken(ctx context.Context) (string, error) {
	body, err := a.getWithRetry(ctx, "/auth/token")
	if err != nil {
		return "", err
	}

	token := scalarOrField(unwrapData(body), "token")
	if token == "" {
		return "", fmt.Errorf("no token in response")
	}
	return token, nil
}

func (a *RestAdapter) getWithRetry(ctx context.Context, path string) (interface{}, error) {
	operation := func() (interface{}, bool, error) {
		body, status, err := a.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, true, err
		}
		if status >= 400 {
			return nil, helper.ShouldRetryHTTP(status, nil), fmt.Errorf("GET %s: upstream status %d", path, status)
		}
		return body, false, nil
	}

	return helper.RetryWithBackoff(operation, 2, 200*time.Millisecond)
}

func (a *RestAdapter) post(ctx context.Context, path string, payload interface{}) (interface{}, error) {
	body, status, err := a.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("POST %s: upstream status %d", path, status)
	}
	return body, nil
}

func (a *RestAdapter) do(ctx context.Context, method, path string, payload interface{}) (interface{}, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var decoded interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		// Non-JSON bodies on error statuses are expected; the status carries
		// the signal.
		if resp.StatusCode < 400 {
			return nil, resp.StatusCode, fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}

	return decoded, resp.StatusCode, nil
}

// unwrapData peels the conventional {"data": ...} envelope when present.
func unwrapData(body interface{}) interface{} {
	if m, ok := body.(map[string]interface{}); ok {
		if inner, ok := m["data"]; ok && inner != nil {
			return inner
		}
	}
	return body
}

// scalarOrField reads a bare scalar response or the first populated field of
// an object response, stringified.
func scalarOrField(body interface{}, fields ...string) string {
	switch v := body.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case map[string]interface{}:
		for _, f := range fields {
			switch inner := v[f].(type) {
			case string:
				if inner != "" {
					return inner
				}
			case float64:
				return fmt.Sprintf("%.0f", inner)
			}
		}
	}
	return ""
}

func reencode(src interface{}, dst interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
