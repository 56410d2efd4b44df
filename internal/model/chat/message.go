package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable turn of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// MostRecent scans messages from the tail and returns the first one with the
// given role whose ID differs from excludeID.
func MostRecent(messages []Message, role Role, excludeID string) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role == role && msg.ID != excludeID {
			return msg, true
		}
	}
	return Message{}, false
}
