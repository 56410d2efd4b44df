package speech

import (
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func shellEngine(t *testing.T, script string) *CommandEngine {
	t.Helper()
	requireShell(t)
	e := NewCommandEngine(CommandConfig{
		Binary: "sh",
		Args: func(speech.SpeakRequest) []string {
			return []string{"-c", script}
		},
	}, zerolog.Nop())
	t.Cleanup(e.Close)
	return e
}

func nextEvent(t *testing.T, e *CommandEngine) speech.Event {
	t.Helper()
	select {
	case ev, ok := <-e.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for playback event")
	}
	return speech.Event{}
}

func TestEspeakArgs(t *testing.T) {
	tests := []struct {
		name string
		req  speech.SpeakRequest
		want []string
	}{
		{
			name: "language fallback",
			req:  speech.SpeakRequest{Text: "नमस्कार", Language: "mr-IN", Pitch: 1.0, Rate: 0.95},
			want: []string{"-v", "mr-IN", "-p", "50", "-s", "166", "--", "नमस्कार"},
		},
		{
			name: "engine voice wins",
			req: speech.SpeakRequest{
				Text:     "hello",
				Language: "en-IN",
				Voice:    &speech.VoiceProfile{LocaleTag: "en-IN", EngineIdentifier: "en-in"},
				Pitch:    1.0,
				Rate:     1.0,
			},
			want: []string{"-v", "en-in", "-p", "50", "-s", "175", "--", "hello"},
		},
		{
			name: "clamped",
			req:  speech.SpeakRequest{Text: "-x", Pitch: 3, Rate: 0.1},
			want: []string{"-p", "99", "-s", "80", "--", "-x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EspeakArgs(tt.req))
		})
	}
}

func TestCommandEngineMissingBinary(t *testing.T) {
	e := NewCommandEngine(CommandConfig{Binary: "definitely-not-a-speech-binary"}, zerolog.Nop())
	defer e.Close()

	assert.False(t, e.Supported())
	assert.ErrorIs(t, e.Speak(speech.SpeakRequest{Text: "hello"}), ErrEngineDetached)
}

func TestCommandEngineStartThenEnd(t *testing.T) {
	e := shellEngine(t, "exit 0")

	require.True(t, e.Supported())
	require.NoError(t, e.Speak(speech.SpeakRequest{UtteranceID: "utt-1", Text: "hello"}))

	assert.Equal(t, speech.Event{Kind: speech.EventStart, UtteranceID: "utt-1"}, nextEvent(t, e))
	assert.Equal(t, speech.Event{Kind: speech.EventEnd, UtteranceID: "utt-1"}, nextEvent(t, e))
}

func TestCommandEngineReportsFailure(t *testing.T) {
	e := shellEngine(t, "exit 3")

	require.NoError(t, e.Speak(speech.SpeakRequest{UtteranceID: "utt-1", Text: "hello"}))

	assert.Equal(t, speech.EventStart, nextEvent(t, e).Kind)
	ev := nextEvent(t, e)
	assert.Equal(t, speech.EventError, ev.Kind)
	assert.Equal(t, "utt-1", ev.UtteranceID)
	assert.NotEmpty(t, ev.Error)
}

func TestCommandEngineCancelKillsProcess(t *testing.T) {
	e := shellEngine(t, "sleep 30")

	require.NoError(t, e.Speak(speech.SpeakRequest{UtteranceID: "utt-1", Text: "hello"}))
	assert.Equal(t, speech.EventStart, nextEvent(t, e).Kind)

	e.Cancel()

	ev := nextEvent(t, e)
	assert.Equal(t, speech.EventError, ev.Kind, "killed process reports an error for its own utterance")
	assert.Equal(t, "utt-1", ev.UtteranceID)
}

func TestCommandEngineSpeakAfterClose(t *testing.T) {
	e := shellEngine(t, "exit 0")
	e.Close()

	assert.ErrorIs(t, e.Speak(speech.SpeakRequest{Text: "hello"}), ErrEngineDetached)
	_, ok := <-e.Events()
	assert.False(t, ok)
}

func TestCommandEngineRejectsEmptyText(t *testing.T) {
	e := shellEngine(t, "exit 0")

	assert.ErrorIs(t, e.Speak(speech.SpeakRequest{}), ErrEmptyText)
}
