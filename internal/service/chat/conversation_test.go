package chat_test

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/shree/backend/internal/model/chat"
	"github.com/zhouzirui/shree/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/shree/backend/internal/service/chat"
	"github.com/zhouzirui/shree/backend/internal/service/reply"
)

func newConversation(opts ...chatservice.Option) *chatservice.Conversation {
	opening := chat.Message{ID: persona.OpeningMessageID, Content: persona.Seed()[0].OpeningLine}
	composer := reply.NewComposer(rand.New(rand.NewPCG(1, 2)))
	return chatservice.NewConversation(opening, composer, opts...)
}

func TestNewConversationSeedsOpening(t *testing.T) {
	conv := newConversation()

	messages := conv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, persona.OpeningMessageID, messages[0].ID)
	assert.Equal(t, chat.RoleAssistant, messages[0].Role)
}

func TestSubmitAppendsUserThenAssistant(t *testing.T) {
	conv := newConversation()

	user, assistant, ok := conv.Submit("  पैसा कसा वाढवू?  ")
	require.True(t, ok)

	messages := conv.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "पैसा कसा वाढवू?", user.Content)
	assert.Equal(t, chat.RoleUser, messages[1].Role)
	assert.Equal(t, chat.RoleAssistant, messages[2].Role)
	assert.Equal(t, user.ID, messages[1].ID)
	assert.Equal(t, assistant.ID, messages[2].ID)
	assert.NotEmpty(t, assistant.Content)
}

func TestSubmitWhitespaceIsRejected(t *testing.T) {
	conv := newConversation()
	before := conv.Messages()

	for _, raw := range []string{"", "   ", "\n\t  "} {
		_, _, ok := conv.Submit(raw)
		assert.False(t, ok)
	}

	if diff := cmp.Diff(before, conv.Messages()); diff != "" {
		t.Fatalf("conversation changed after blank submit (-want +got):\n%s", diff)
	}
}

func TestSubmitGrowsByTwo(t *testing.T) {
	conv := newConversation()
	inputs := []string{"नमस्कार", "stress", "money habit", "आज काय करू", "x"}

	for i, input := range inputs {
		_, _, ok := conv.Submit(input)
		require.True(t, ok)
		assert.Equal(t, 1+2*(i+1), conv.Len())
	}
}

func TestSubmitRecallsPreviousUserMessage(t *testing.T) {
	conv := newConversation()

	_, _, ok := conv.Submit("माझं स्वप्न")
	require.True(t, ok)
	_, assistant, ok := conv.Submit("नमस्कार")
	require.True(t, ok)

	assert.Contains(t, assistant.Content, `"माझं स्वप्न"`)
}

func TestIDsUniqueAcrossLongSession(t *testing.T) {
	conv := newConversation()

	for i := 0; i < 5000; i++ {
		_, _, ok := conv.Submit(fmt.Sprintf("message %d", i))
		require.True(t, ok)
	}

	messages := conv.Messages()
	require.Len(t, messages, 10001)

	seen := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		_, dup := seen[msg.ID]
		require.False(t, dup, "duplicate id %s", msg.ID)
		seen[msg.ID] = struct{}{}
	}
}

func TestSubmitRegeneratesCollidingIDs(t *testing.T) {
	calls := 0
	ids := []string{"dup", "dup", "dup", "fresh"}
	conv := newConversation(chatservice.WithIDFunc(func(role chat.Role) string {
		id := ids[calls%len(ids)]
		calls++
		return id
	}))

	user, assistant, ok := conv.Submit("hello")
	require.True(t, ok)
	assert.Equal(t, "dup", user.ID)
	assert.Equal(t, "fresh", assistant.ID)
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	conv := newConversation()

	err := conv.Append(chat.Message{ID: persona.OpeningMessageID, Role: chat.RoleAssistant})
	assert.ErrorIs(t, err, chatservice.ErrDuplicateMessageID)
	assert.Equal(t, 1, conv.Len())
}

func TestMostRecentAssistant(t *testing.T) {
	conv := newConversation()

	got, ok := conv.MostRecent(chat.RoleAssistant, "")
	require.True(t, ok)
	assert.Equal(t, persona.OpeningMessageID, got.ID)

	_, assistant, _ := conv.Submit("hi")
	got, _ = conv.MostRecent(chat.RoleAssistant, "")
	assert.Equal(t, assistant.ID, got.ID)
}

func TestNewMessageIDPrefixesRole(t *testing.T) {
	assert.True(t, strings.HasPrefix(chatservice.NewMessageID(chat.RoleUser), "user-"))
	assert.True(t, strings.HasPrefix(chatservice.NewMessageID(chat.RoleAssistant), "assistant-"))
}
