// Package reply assembles the templated assistant reply from classifier output.
package reply

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/shree/backend/internal/analysis/intent"
	"github.com/zhouzirui/shree/backend/internal/model/chat"
)

// Picker is the random source behind every pool selection. *rand.Rand from
// math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

var openers = []string{
	"यशू, आधी एक खोल श्वास घे आणि मन स्थिर कर.",
	"यशू, तुझा आवाज मी स्पष्ट ऐकतो आहे; आपण मनाची दिशा ठरवूया.",
	"यशू, शांततेत उभे राहू आणि पुढील कृतीत विश्वास बळकट करूया.",
}

var wealthLines = []string{
	"आज पैशांचा प्रवाह पाहण्यासाठी तुझ्या खर्चाचा तीन मुद्द्यांचा सारांश लिही.",
	"कमाई वाढवण्यासाठी एका उच्च-मूल्य कौशल्यावर ३० मिनिटे गुंतवणूक कर.",
	"इन्कमला तीन बकेटमध्ये विभाग: वाढ, बचत आणि आनंद; प्रत्येकात आज एक कृती कर.",
	"तुझ्या गुंतवणुकीचा छोटा विजय नोंदव; सातत्य मोठा परिणाम देतं.",
}

var habitLines = []string{
	"पहाटेचा पहिला तास जाणीवपूर्वक वापर; हलका व्यायाम आणि दोन स्पष्ट ध्येये लिही.",
	"मोबाइलचा पहिल्या तासाचा वापर नियंत्रणात ठेव; फोकस कायम राहील.",
	"रात्री झोपण्यापूर्वी तीन वाक्यांचा रिफ्लेक्शन लिही; मन स्वच्छ होईल.",
	"दररोज एक सूक्ष्म सवय स्थिर ठेव; सात दिवसांनी मोठा बदल जाणवेल.",
}

// executionLines[:restrictedExecution] is the calmer subset used when no focus keyword was present.
var executionLines = []string{
	"काम सुरू करण्यापूर्वी त्या कामाचा संक्षिप्त परिणाम लिही; फोकस तीव्र होईल.",
	"कार्यक्षेत्रातील एक व्यक्तीला आज मदत कर; नेटवर्कची उष्णता वाढेल.",
	"तुला थांबवणाऱ्या गोष्टींची यादी लिही आणि एकावर लगेच कृती कर.",
	"आज स्वत:साठी ९० मिनिटांची डीप वर्क विंडो राखून ठेव.",
}

const restrictedExecution = 2

var closings = []string{
	"मी तुझ्यासोबत शांतपणे उभा आहे; पुढचा पाऊल टाक.",
	"तुझी उर्जा योग्य दिशेला वाहव; आपल्याला विजय हाक मारतो आहे.",
	"तुझ्या संकल्पावर माझा दृढ विश्वास आहे; चला, पुढे सरसावूया.",
	"तू संयमी आणि धाडसी आहेस; आजचा दिवस तुझ्या नावाने लिही.",
}

const (
	recallTemplate = "तू आधी म्हणालास की \"%s\" हे महत्त्वाचं आहे; त्याला शांत ताकदीने उत्तर दे."
	genericContext = "तुझ्या विचारांचा सूर ठाम आहे; आपण त्याला पद्धतशीर कृतीत उतरवू."
)

// Composer turns a classification into reply text.
type Composer struct {
	picker Picker
}

// NewComposer binds the composer to a random source.
func NewComposer(picker Picker) *Composer {
	return &Composer{picker: picker}
}

// Compose joins the reply parts with single spaces.
func (c *Composer) Compose(result intent.Result, history []chat.Message) string {
	return strings.Join(c.Parts(result, history), " ")
}

// Parts returns the ordered reply segments: opener, context line, optional
// wealth and habit lines, execution line, closing.
//
// history must end with the user message being answered; the recall line
// quotes the most recent earlier user message.
func (c *Composer) Parts(result intent.Result, history []chat.Message) []string {
	parts := make([]string, 0, 6)
	parts = append(parts, c.pick(openers))
	parts = append(parts, c.contextLine(result, history))

	if result.WealthFocus {
		parts = append(parts, c.pick(wealthLines))
	}
	if result.HabitFocus {
		parts = append(parts, c.pick(habitLines))
	}

	if result.ActionFocus {
		parts = append(parts, c.pick(executionLines))
	} else {
		parts = append(parts, c.pick(executionLines[:restrictedExecution]))
	}

	parts = append(parts, c.pick(closings))
	return parts
}

func (c *Composer) contextLine(result intent.Result, history []chat.Message) string {
	if len(result.MatchedEmotions) > 0 {
		return c.pick(result.MatchedEmotions)
	}

	excludeID := ""
	if len(history) > 0 {
		excludeID = history[len(history)-1].ID
	}
	if prior, ok := chat.MostRecent(history, chat.RoleUser, excludeID); ok && prior.Content != "" {
		return fmt.Sprintf(recallTemplate, prior.Content)
	}
	return genericContext
}

// pick never returns an empty string for a non-empty pool; out-of-range
// indexes fall back to the first entry.
func (c *Composer) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	if c.picker == nil {
		return pool[0]
	}
	idx := c.picker.IntN(len(pool))
	if idx < 0 || idx >= len(pool) || pool[idx] == "" {
		return pool[0]
	}
	return pool[idx]
}
