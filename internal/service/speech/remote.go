package speech

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

var _ Engine = (*RemoteEngine)(nil)

// Outbound frame types written to the attached client.
const (
	FrameSpeak  = "speak"
	FrameCancel = "cancel"
)

// FrameWriter sends one typed frame to the client that owns the real
// synthesizer (a browser speechSynthesis, typically over a WebSocket).
type FrameWriter interface {
	WriteFrame(frameType string, data any) error
}

// RemoteEngine forwards playback to a connected client and turns the
// client's playback reports back into Events.
type RemoteEngine struct {
	mu        sync.RWMutex
	writer    FrameWriter
	supported bool
	voices    []speech.Voice

	events chan speech.Event
	logger zerolog.Logger
}

// NewRemoteEngine creates a detached engine.
func NewRemoteEngine(logger zerolog.Logger) *RemoteEngine {
	return &RemoteEngine{
		events: make(chan speech.Event, 32),
		logger: logger.With().Str("component", "remote-engine").Logger(),
	}
}

// Attach routes frames to w, replacing any previous client. Capability stays
// off until the client reports it.
func (e *RemoteEngine) Attach(w FrameWriter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writer = w
	e.supported = false
	e.voices = nil
}

// Detach drops w if it is still the attached client.
func (e *RemoteEngine) Detach(w FrameWriter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.writer != w {
		return
	}
	e.writer = nil
	e.supported = false
	e.voices = nil
}

// UpdateCapabilities stores the client's capability probe and voice list.
func (e *RemoteEngine) UpdateCapabilities(supported bool, voices []speech.Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.supported = supported
	e.voices = append([]speech.Voice(nil), voices...)
}

// Deliver queues a client playback report for the session loop.
func (e *RemoteEngine) Deliver(ctx context.Context, ev speech.Event) error {
	select {
	case e.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *RemoteEngine) Supported() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.writer != nil && e.supported
}

func (e *RemoteEngine) Voices() []speech.Voice {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]speech.Voice(nil), e.voices...)
}

func (e *RemoteEngine) Speak(req speech.SpeakRequest) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	e.mu.RLock()
	writer := e.writer
	e.mu.RUnlock()
	if writer == nil {
		return ErrEngineDetached
	}
	return writer.WriteFrame(FrameSpeak, req)
}

func (e *RemoteEngine) Cancel() {
	e.mu.RLock()
	writer := e.writer
	e.mu.RUnlock()
	if writer == nil {
		return
	}
	if err := writer.WriteFrame(FrameCancel, nil); err != nil {
		e.logger.Warn().Err(err).Msg("failed to send cancel frame")
	}
}

func (e *RemoteEngine) Events() <-chan speech.Event {
	return e.events
}
