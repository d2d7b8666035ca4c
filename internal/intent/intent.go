// Package intent maps recognized text to one of a fixed set of intents.
package intent

import "strings"

type Intent string

const (
	Date        Intent = "date"
	Time        Intent = "time"
	Day         Intent = "day"
	City        Intent = "city"
	State       Intent = "state"
	Location    Intent = "location"
	Add         Intent = "add"
	Multiply    Intent = "multiply"
	Divide      Intent = "divide"
	Alarm       Intent = "alarm"
	Joke        Intent = "joke"
	Greeting    Intent = "greeting"
	Identity    Intent = "identity"
	Help        Intent = "help"
	Temperature Intent = "temperature"
	Internet    Intent = "internet"
	Exit        Intent = "exit"
	Unknown     Intent = "unknown"
)

// Entry binds an intent to the phrases that trigger it.
type Entry struct {
	Intent  Intent
	Phrases []string
}

// DefaultTable lists entries in priority order. Date must come before
// time: a date utterance may also contain a time-like word.
func DefaultTable() []Entry {
	return []Entry{
		{Date, []string{"तारीख", "आज की तारीख"}},
		{Time, []string{"समय", "कितने बजे"}},
		{Day, []string{"आज कौन सा दिन", "दिन"}},
		{City, []string{"शहर"}},
		{State, []string{"राज्य"}},
		{Location, []string{"लोकेशन", "स्थान"}},
		{Add, []string{"जोड़", "प्लस"}},
		{Multiply, []string{"गुणा"}},
		{Divide, []string{"भाग"}},
		{Alarm, []string{"अलार्म"}},
		{Joke, []string{"जोक"}},
		{Greeting, []string{"नमस्ते", "हैलो"}},
		{Identity, []string{"तुम कौन हो"}},
		{Help, []string{"मदद"}},
		{Temperature, []string{"तापमान"}},
		{Internet, []string{"इंटरनेट"}},
		{Exit, []string{"बंद", "अलविदा"}},
	}
}

type Classifier struct {
	table []Entry
}

func NewClassifier() *Classifier {
	return &Classifier{table: DefaultTable()}
}

func NewClassifierWith(table []Entry) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the first entry, in table order, with any phrase
// contained in text. No tokenization, no scoring.
func (c *Classifier) Classify(text string) Intent {
	for _, e := range c.table {
		for _, p := range e.Phrases {
			if strings.Contains(text, p) {
				return e.Intent
			}
		}
	}
	return Unknown
}
