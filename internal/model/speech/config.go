package speech

// SpeechConfig controls how replies are voiced.
type SpeechConfig struct {
	AutoVoice       bool     `json:"autoVoice"`
	Pitch           float64  `json:"pitch"`           // engine pitch multiplier
	Rate            float64  `json:"rate"`            // engine rate multiplier
	DefaultLanguage string   `json:"defaultLanguage"` // used when no voice profile resolved
	LocalePriority  []string `json:"localePriority"`  // first match wins
}

// DefaultSpeechConfig returns neutral pitch, a slightly slow rate and Marathi-first locales.
func DefaultSpeechConfig() SpeechConfig {
	return SpeechConfig{
		AutoVoice:       true,
		Pitch:           1.0,
		Rate:            0.95,
		DefaultLanguage: "mr-IN",
		LocalePriority:  []string{"mr", "hi", "en-in"},
	}
}
