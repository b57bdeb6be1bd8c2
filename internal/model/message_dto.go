package model

// RawMessage is the loosely-typed wire shape of a message as it arrives from
// the upstream REST history endpoint or from a realtime event. Field naming
// differs between the two feeds, so everything is optional here and the
// normalizer in helper is the only place that interprets it.
type RawMessage map[string]interface{}

// Message is the canonical, post-normalization shape. Never mutated after
// creation.
type Message struct {
	ID         string `json:"id"`
	ChatID     string `json:"chatId,omitempty"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId,omitempty"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// SendMessagePayload is the body posted to the upstream /messages endpoint.
type SendMessagePayload struct {
	ChatID     string `json:"chatId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}
