package intent

import "strings"

// Cue pairs trigger keywords with one canned response line.
type Cue struct {
	Name     string
	Keywords []string
	Line     string
}

// Result is the classifier output consumed by the reply composer.
type Result struct {
	MatchedEmotions []string `json:"matchedEmotions"`
	WealthFocus     bool     `json:"wealthFocus"`
	HabitFocus      bool     `json:"habitFocus"`
	ActionFocus     bool     `json:"actionFocus"`
}

// EmotionCues is ordered; matched lines keep this order.
var EmotionCues = []Cue{
	{
		Name:     "stress",
		Keywords: []string{"तणाव", "stress", "anxious", "panic", "तडजोड", "pressure"},
		Line:     "तुझ्या शब्दांत तणाव जाणवतो, पण तुझी शांत मनस्थिती काही श्वासांनी परत येते.",
	},
	{
		Name:     "fatigue",
		Keywords: []string{"थकल", "tired", "थकवा", "exhaust", "break"},
		Line:     "थकवा आला तरी तुझ्या सवयी टिकवा; छोटासा विश्रांतीचा खिडकी असेल तरी योजना जिवंत ठेवा.",
	},
	{
		Name:     "fear",
		Keywords: []string{"भीती", "fear", "दडपण", "doubt", "शंका"},
		Line:     "भीती आली की तू थांबत नाहीस; तिला तथ्ये आणि कृतीने उत्तर दे.",
	},
	{
		Name:     "joy",
		Keywords: []string{"आनंद", "happy", "मजा", "grateful"},
		Line:     "आनंदाची जाण ठेव; प्रेरणेला शिस्तीसोबत जोडल्यास तू अजून वेगाने वाढशील.",
	},
}

var (
	// WealthKeywords mark money and investment topics.
	WealthKeywords = []string{"money", "finance", "wealth", "budget", "investment", "invest", "saving", "पैसा", "गुंतवणूक", "कमाई"}
	// HabitKeywords mark routine and discipline topics.
	HabitKeywords = []string{"habit", "routine", "discipline", "सवय", "शिस्त", "रुटीन"}
	// FocusKeywords mark an explicit goal or plan for the day.
	FocusKeywords = []string{"goal", "focus", "plan", "दिवस", "आज", "target", "लक्ष"}
)

// Classify matches the lower-cased input against the cue tables.
//
// Wealth and habit focus default to true when no emotion matched; action
// focus only turns on when a focus keyword is present.
func Classify(text string) Result {
	normalized := strings.ToLower(text)

	matched := make([]string, 0, len(EmotionCues))
	for _, cue := range EmotionCues {
		if containsAny(normalized, cue.Keywords) {
			matched = append(matched, cue.Line)
		}
	}

	noEmotion := len(matched) == 0
	return Result{
		MatchedEmotions: matched,
		WealthFocus:     noEmotion || containsAny(normalized, WealthKeywords),
		HabitFocus:      noEmotion || containsAny(normalized, HabitKeywords),
		ActionFocus:     containsAny(normalized, FocusKeywords),
	}
}

func containsAny(normalized string, keywords []string) bool {
	for _, word := range keywords {
		if word == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
