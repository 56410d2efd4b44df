package speech

import (
	"strings"

	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

// SelectVoice walks the locale priority list and returns the first voice
// whose locale contains the tag. Without any match the first voice is used;
// an empty list yields no profile and the engine falls back to its default.
func SelectVoice(voices []speech.Voice, priority []string) (speech.VoiceProfile, bool) {
	if len(voices) == 0 {
		return speech.VoiceProfile{}, false
	}

	for _, tag := range priority {
		want := normalizeLocale(tag)
		if want == "" {
			continue
		}
		for _, voice := range voices {
			if strings.Contains(normalizeLocale(voice.LocaleTag), want) {
				return profileOf(voice), true
			}
		}
	}

	return profileOf(voices[0]), true
}

func profileOf(voice speech.Voice) speech.VoiceProfile {
	return speech.VoiceProfile{LocaleTag: voice.LocaleTag, EngineIdentifier: voice.Identifier}
}

func normalizeLocale(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "_", "-")
}
