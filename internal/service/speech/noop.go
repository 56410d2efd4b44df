package speech

import "github.com/zhouzirui/shree/backend/internal/model/speech"

var _ Engine = (*NoopEngine)(nil)

// NoopEngine is used when no speech backend is available. It reports itself
// unsupported so every playback command degrades to a no-op.
type NoopEngine struct {
	events chan speech.Event
}

// NewNoopEngine creates an engine whose event channel never fires.
func NewNoopEngine() *NoopEngine {
	return &NoopEngine{events: make(chan speech.Event)}
}

func (n *NoopEngine) Supported() bool                 { return false }
func (n *NoopEngine) Voices() []speech.Voice          { return nil }
func (n *NoopEngine) Speak(speech.SpeakRequest) error { return ErrEngineDetached }
func (n *NoopEngine) Cancel()                         {}
func (n *NoopEngine) Events() <-chan speech.Event     { return n.events }
