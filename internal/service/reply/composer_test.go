package reply

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/shree/backend/internal/analysis/intent"
	"github.com/zhouzirui/shree/backend/internal/model/chat"
)

// scriptedPicker replays fixed indexes and records the pool sizes it was asked about.
type scriptedPicker struct {
	indexes []int
	sizes   []int
}

func (p *scriptedPicker) IntN(n int) int {
	p.sizes = append(p.sizes, n)
	if len(p.indexes) == 0 {
		return 0
	}
	idx := p.indexes[0]
	p.indexes = p.indexes[1:]
	return idx
}

func userMsg(id, content string) chat.Message {
	return chat.Message{ID: id, Role: chat.RoleUser, Content: content}
}

func TestPartsStressUsesEmotionLine(t *testing.T) {
	text := "खूप तणाव आहे"
	history := []chat.Message{userMsg("u-1", text)}
	composer := NewComposer(rand.New(rand.NewPCG(7, 11)))

	parts := composer.Parts(intent.Classify(text), history)

	require.Len(t, parts, 4)
	assert.Contains(t, openers, parts[0])
	assert.Equal(t, intent.EmotionCues[0].Line, parts[1])
	assert.Contains(t, executionLines[:restrictedExecution], parts[2])
	assert.Contains(t, closings, parts[3])
}

func TestPartsMultipleEmotionsPickFromMatched(t *testing.T) {
	text := "tired and full of doubt"
	result := intent.Classify(text)
	require.Len(t, result.MatchedEmotions, 2)

	for seed := uint64(0); seed < 32; seed++ {
		composer := NewComposer(rand.New(rand.NewPCG(seed, seed+1)))
		parts := composer.Parts(result, []chat.Message{userMsg("u-1", text)})
		assert.Contains(t, result.MatchedEmotions, parts[1])
	}
}

func TestPartsQuickPromptScenario(t *testing.T) {
	text := "आजचा दिवस आत्मविश्वासाने कसा सुरू करू?"
	picker := &scriptedPicker{indexes: []int{0, 1, 2, 3, 0}}
	composer := NewComposer(picker)

	parts := composer.Parts(intent.Classify(text), []chat.Message{userMsg("u-1", text)})

	require.Len(t, parts, 6)
	assert.Equal(t, openers[0], parts[0])
	assert.Equal(t, genericContext, parts[1])
	assert.Equal(t, wealthLines[1], parts[2])
	assert.Equal(t, habitLines[2], parts[3])
	assert.Equal(t, executionLines[3], parts[4], "full execution pool is available")
	assert.Equal(t, closings[0], parts[5])
	assert.Equal(t, []int{3, 4, 4, 4, 4}, picker.sizes)
}

func TestPartsWithoutFocusRestrictsExecutionPool(t *testing.T) {
	text := "नमस्कार"
	picker := &scriptedPicker{}
	composer := NewComposer(picker)

	parts := composer.Parts(intent.Classify(text), []chat.Message{userMsg("u-1", text)})

	require.Len(t, parts, 6)
	assert.Equal(t, restrictedExecution, picker.sizes[3])
}

func TestPartsRecallsPreviousUserMessage(t *testing.T) {
	history := []chat.Message{
		{ID: "assistant-initial", Role: chat.RoleAssistant, Content: "opening"},
		userMsg("u-1", "माझं स्वप्न"),
		{ID: "a-1", Role: chat.RoleAssistant, Content: "reply"},
		userMsg("u-2", "नमस्कार"),
	}
	composer := NewComposer(&scriptedPicker{})

	parts := composer.Parts(intent.Classify("नमस्कार"), history)

	assert.Equal(t, `तू आधी म्हणालास की "माझं स्वप्न" हे महत्त्वाचं आहे; त्याला शांत ताकदीने उत्तर दे.`, parts[1])
}

func TestPartsGenericContextWithoutHistory(t *testing.T) {
	composer := NewComposer(&scriptedPicker{})

	parts := composer.Parts(intent.Classify("नमस्कार"), nil)

	assert.Equal(t, genericContext, parts[1])
}

func TestPickFallsBackToFirstEntry(t *testing.T) {
	composer := NewComposer(&scriptedPicker{indexes: []int{9, -1}})

	assert.Equal(t, "a", composer.pick([]string{"a", "b"}))
	assert.Equal(t, "a", composer.pick([]string{"a", "b"}))
	assert.Equal(t, "", composer.pick(nil))
	assert.Equal(t, "a", NewComposer(nil).pick([]string{"a", "b"}))
}

func TestComposeJoinsWithSingleSpace(t *testing.T) {
	text := "नमस्कार"
	history := []chat.Message{userMsg("u-1", text)}
	result := intent.Classify(text)

	parts := NewComposer(&scriptedPicker{}).Parts(result, history)
	content := NewComposer(&scriptedPicker{}).Compose(result, history)

	assert.Equal(t, strings.Join(parts, " "), content)
	assert.NotContains(t, content, "  ")
}

func TestComposeSeededIsReproducible(t *testing.T) {
	text := "money habit plan"
	history := []chat.Message{userMsg("u-1", text)}
	result := intent.Classify(text)

	first := NewComposer(rand.New(rand.NewPCG(42, 1))).Compose(result, history)
	second := NewComposer(rand.New(rand.NewPCG(42, 1))).Compose(result, history)

	assert.Equal(t, first, second)
}
