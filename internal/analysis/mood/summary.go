// Package mood derives the banner line shown above the conversation.
package mood

import "strings"

const (
	// Quiet is shown before the user has said anything.
	Quiet   = "आजचा सूर शांत आणि लक्षपूर्वक ठेव."
	Stress  = "तणावाच्या मागे नेहमी एक साधं उत्तर असतं; श्वास, योजना, कृती."
	Money   = "पैशाला दिशा दे म्हणजे तो तुझ्यासाठी काम करेल."
	Habit   = "सवयींवर शांततेने काम कर; दिवसेंदिवस उंची वाढेल."
	Generic = "मन शांत ठेव आणि पुढच्या कृतीवर प्रकाश टाक."
)

var rules = []struct {
	keywords []string
	line     string
}{
	{keywords: []string{"stress", "तणाव"}, line: Stress},
	{keywords: []string{"money", "पैसा"}, line: Money},
	{keywords: []string{"habit", "सवय"}, line: Habit},
}

// Summarize maps the latest user message to a fixed line. found is false
// when the conversation has no user message yet.
func Summarize(latestUser string, found bool) string {
	if !found {
		return Quiet
	}

	content := strings.ToLower(latestUser)
	for _, rule := range rules {
		for _, word := range rule.keywords {
			if strings.Contains(content, word) {
				return rule.line
			}
		}
	}
	return Generic
}
