package speech

// EventKind enumerates engine playback notifications.
type EventKind string

const (
	EventStart EventKind = "start"
	EventEnd   EventKind = "end"
	EventError EventKind = "error"
)

// Event is a playback notification tagged with the utterance it refers to.
type Event struct {
	Kind        EventKind `json:"kind"`
	UtteranceID string    `json:"utteranceId"`
	Error       string    `json:"error,omitempty"`
}

// PlaybackStatus distinguishes the two controller states.
type PlaybackStatus string

const (
	StatusIdle     PlaybackStatus = "idle"
	StatusSpeaking PlaybackStatus = "speaking"
)

// PlaybackState is Idle, or Speaking with the tracked message and utterance.
type PlaybackState struct {
	Status      PlaybackStatus `json:"status"`
	MessageID   string         `json:"messageId,omitempty"`
	UtteranceID string         `json:"utteranceId,omitempty"`
}

// Idle reports whether nothing is being tracked.
func (s PlaybackState) Idle() bool {
	return s.Status != StatusSpeaking
}
