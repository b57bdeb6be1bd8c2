package helper

import (
	"sort"
	"strconv"
	"time"

	"BoleiaWeb/internal/model"

	"github.com/google/uuid"
)

// Field aliases accepted across the two ingestion feeds. REST history and
// realtime events disagree on naming, so every logical field has a preference
// list and the first populated alias wins.
var (
	idAliases        = []string{"id", "_id", "messageId"}
	chatIDAliases    = []string{"chatId", "chat_id"}
	senderAliases    = []string{"senderId", "sender_id", "from", "userId"}
	receiverAliases  = []string{"receiverId", "receiver_id", "to"}
	contentAliases   = []string{"content", "message", "text"}
	timestampAliases = []string{"timestamp", "createdAt", "created_at"}
)

// NormalizeFallback carries the context the caller already knows when the
// event itself is incomplete.
type NormalizeFallback struct {
	SelfID     string
	ReceiverID string
}

// NormalizeMessage maps a loosely-typed wire record onto the canonical
// message shape. Returns nil when the record carries no content field at all;
// such events are unusable and must be silently discarded, not defaulted to
// an empty string.
func NormalizeMessage(raw model.RawMessage, fallback NormalizeFallback) *model.Message {
	if raw == nil {
		return nil
	}

	content, ok := lookupField(raw, contentAliases)
	if !ok {
		return nil
	}

	senderID, _ := lookupField(raw, senderAliases)
	receiverID, _ := lookupField(raw, receiverAliases)

	// Some event shapes only identify "the other side" implicitly: an event
	// with no sender in a thread whose counterpart is known came from that
	// counterpart.
	if senderID == "" && fallback.ReceiverID != "" {
		senderID = fallback.ReceiverID
	}
	if receiverID == "" && fallback.SelfID != "" && senderID != "" && senderID != fallback.SelfID {
		receiverID = fallback.SelfID
	}
	if receiverID == "" && fallback.SelfID != "" && senderID == fallback.SelfID && fallback.ReceiverID != "" {
		// A self-sent echo needs the original recipient restored.
		receiverID = fallback.ReceiverID
	}

	id, ok := lookupField(raw, idAliases)
	if !ok || id == "" {
		id = uuid.NewString()
	}

	timestamp, ok := lookupField(raw, timestampAliases)
	if !ok || timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}

	chatID, _ := lookupField(raw, chatIDAliases)

	return &model.Message{
		ID:         id,
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  timestamp,
	}
}

// ExtractMessages unifies the payload shapes of both feeds into one array:
// a bare array, a {"messages": [...]} wrapper, a {"data": [...]} wrapper, a
// {"data": {"messages": [...]}} wrapper, or a single message object.
// Unrecognized shapes yield an empty list.
func ExtractMessages(payload interface{}) []model.RawMessage {
	switch v := payload.(type) {
	case nil:
		return nil
	case []interface{}:
		return toRawMessages(v)
	case []model.RawMessage:
		return v
	case model.RawMessage:
		return extractFromMap(v)
	case map[string]interface{}:
		return extractFromMap(v)
	default:
		return nil
	}
}

func extractFromMap(m map[string]interface{}) []model.RawMessage {
	if list, ok := m["messages"].([]interface{}); ok {
		return toRawMessages(list)
	}
	if list, ok := m["data"].([]interface{}); ok {
		return toRawMessages(list)
	}
	if nested, ok := m["data"].(map[string]interface{}); ok {
		if list, ok := nested["messages"].([]interface{}); ok {
			return toRawMessages(list)
		}
	}
	// A single-event payload is its own message record.
	return []model.RawMessage{m}
}

func toRawMessages(list []interface{}) []model.RawMessage {
	out := make([]model.RawMessage, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// lookupField returns the first populated alias stringified. The second
// return reports whether any alias was present at all, which matters for
// content where presence and emptiness are different things.
func lookupField(raw model.RawMessage, aliases []string) (string, bool) {
	found := false
	for _, key := range aliases {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		found = true
		if s := stringify(value); s != "" {
			return s, true
		}
	}
	return "", found
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; ids are compared as strings.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// ParseTimestamp converts an ISO-8601 string to Unix milliseconds, returning
// 0 for anything unparseable so malformed entries sort first instead of
// failing.
func ParseTimestamp(value string) int64 {
	if value == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UnixMilli()
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UnixMilli()
	}
	return 0
}

// SortMessagesByTimestamp orders ascending by parsed timestamp. Stable, so
// entries with equal (or unparseable) timestamps keep arrival order.
func SortMessagesByTimestamp(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return ParseTimestamp(messages[i].Timestamp) < ParseTimestamp(messages[j].Timestamp)
	})
}
