package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/shree/backend/internal/analysis/intent"
	"github.com/zhouzirui/shree/backend/internal/model/chat"
	"github.com/zhouzirui/shree/backend/internal/service/reply"
)

var ErrDuplicateMessageID = errors.New("message id already present in conversation")

// IDFunc generates message identifiers.
type IDFunc func(role chat.Role) string

// NewMessageID prefixes a random UUID with the role.
func NewMessageID(role chat.Role) string {
	return string(role) + "-" + uuid.NewString()
}

// Conversation is the append-only message log of one session. It is not
// safe for concurrent use; the owning session serializes access.
type Conversation struct {
	messages []chat.Message
	ids      map[string]struct{}
	composer *reply.Composer
	newID    IDFunc
	now      func() time.Time
}

// Option customizes a Conversation.
type Option func(*Conversation)

// WithIDFunc overrides message id generation.
func WithIDFunc(fn IDFunc) Option {
	return func(c *Conversation) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		if now != nil {
			c.now = now
		}
	}
}

// NewConversation seeds the log with the opening assistant message.
func NewConversation(opening chat.Message, composer *reply.Composer, opts ...Option) *Conversation {
	c := &Conversation{
		messages: make([]chat.Message, 0, 16),
		ids:      make(map[string]struct{}),
		composer: composer,
		newID:    NewMessageID,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}

	opening.Role = chat.RoleAssistant
	if opening.ID == "" {
		opening.ID = c.newID(chat.RoleAssistant)
	}
	_ = c.Append(opening)
	return c
}

// Append adds a message at the tail.
func (c *Conversation) Append(message chat.Message) error {
	if _, exists := c.ids[message.ID]; exists {
		return ErrDuplicateMessageID
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = c.now()
	}
	c.ids[message.ID] = struct{}{}
	c.messages = append(c.messages, message)
	return nil
}

// MostRecent returns the latest message of role whose id is not excludeID.
func (c *Conversation) MostRecent(role chat.Role, excludeID string) (chat.Message, bool) {
	return chat.MostRecent(c.messages, role, excludeID)
}

// Submit trims rawText and, when it is not blank, appends the user message
// and its reply as one step. ok is false for blank input and nothing changes.
func (c *Conversation) Submit(rawText string) (user, assistant chat.Message, ok bool) {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return chat.Message{}, chat.Message{}, false
	}

	user = chat.Message{ID: c.uniqueID(chat.RoleUser, ""), Role: chat.RoleUser, Content: trimmed, CreatedAt: c.now()}

	withUser := make([]chat.Message, len(c.messages), len(c.messages)+1)
	copy(withUser, c.messages)
	withUser = append(withUser, user)

	content := c.composer.Compose(intent.Classify(trimmed), withUser)
	assistant = chat.Message{ID: c.uniqueID(chat.RoleAssistant, user.ID), Role: chat.RoleAssistant, Content: content, CreatedAt: c.now()}

	// Both ids are known to be fresh, so neither append can fail.
	_ = c.Append(user)
	_ = c.Append(assistant)
	return user, assistant, true
}

// uniqueID regenerates until the id is unused and differs from pending.
func (c *Conversation) uniqueID(role chat.Role, pending string) string {
	for {
		id := c.newID(role)
		if _, exists := c.ids[id]; exists || id == pending {
			continue
		}
		return id
	}
}

// Messages returns a copy of the log in insertion order.
func (c *Conversation) Messages() []chat.Message {
	copied := make([]chat.Message, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// Len reports the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}
