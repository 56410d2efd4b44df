package speech

import (
	"errors"

	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

var (
	ErrEngineDetached = errors.New("speech engine not attached")
	ErrEmptyText      = errors.New("speech text is empty")
)

// Engine abstracts a text-to-speech backend. Speak is fire-and-forget:
// progress arrives later on Events, tagged with the request's UtteranceID.
type Engine interface {
	Supported() bool
	Voices() []speech.Voice
	Speak(req speech.SpeakRequest) error
	Cancel()
	Events() <-chan speech.Event
}
