package model

// Chat mirrors the upstream chat summary. Participants are exactly two user
// ids in this client's model; ordering is irrelevant.
type Chat struct {
	ID           string       `json:"id"`
	Participants []string     `json:"participants"`
	Messages     []RawMessage `json:"messages,omitempty"`
}

// Participant is a chat member with its resolved display name. When the name
// lookup fails the name degrades to the raw id.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConversationRow is one inbox entry.
type ConversationRow struct {
	ChatID       string        `json:"chatId"`
	Participants []Participant `json:"participants"`
	DisplayName  string        `json:"displayName"`
	LastMessage  *LastMessage  `json:"lastMessage,omitempty"`
}

type LastMessage struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ConversationView is the state owned by one open thread.
type ConversationView struct {
	ChatID       string        `json:"chatId"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
}

type StartChatRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

type StartChatResponse struct {
	ChatID  string `json:"chatId"`
	Created bool   `json:"created"`
}
