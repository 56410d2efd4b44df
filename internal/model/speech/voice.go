package speech

// Voice is one entry of the engine's voice list.
type Voice struct {
	LocaleTag  string `json:"localeTag"`
	Identifier string `json:"identifier"`
}

// VoiceProfile is the voice chosen for playback.
type VoiceProfile struct {
	LocaleTag        string `json:"localeTag"`
	EngineIdentifier string `json:"engineIdentifier"`
}

// SpeakRequest is handed to the engine for one utterance.
type SpeakRequest struct {
	UtteranceID string        `json:"utteranceId"`
	MessageID   string        `json:"messageId"`
	Text        string        `json:"text"`
	Language    string        `json:"language"`
	Voice       *VoiceProfile `json:"voice,omitempty"`
	Pitch       float64       `json:"pitch"`
	Rate        float64       `json:"rate"`
}
