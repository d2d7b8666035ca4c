// Package respond turns a classified intent into a spoken Hindi reply.
package respond

import (
	"fmt"
	"time"

	"sahayak/internal/intent"
)

// Locator resolves the current position to a named city and state.
// ok is false when no fix or no matching region is available.
type Locator interface {
	Locate() (city, state string, ok bool)
}

const notUnderstood = "समझा नहीं"
const noLocation = "स्थान नहीं मिला"

var hindiWeekdays = map[time.Weekday]string{
	time.Sunday:    "रविवार",
	time.Monday:    "सोमवार",
	time.Tuesday:   "मंगलवार",
	time.Wednesday: "बुधवार",
	time.Thursday:  "गुरुवार",
	time.Friday:    "शुक्रवार",
	time.Saturday:  "शनिवार",
}

// Planner is a total mapping from intents to replies. The clock and
// locator are injected so time and location replies stay testable.
type Planner struct {
	now    func() time.Time
	locate Locator
}

// noLocator reports no position, the same as a GPS that never fixes.
type noLocator struct{}

func (noLocator) Locate() (string, string, bool) { return "", "", false }

func NewPlanner(now func() time.Time, locate Locator) *Planner {
	if now == nil {
		now = time.Now
	}
	if locate == nil {
		locate = noLocator{}
	}
	return &Planner{now: now, locate: locate}
}

func (p *Planner) Plan(it intent.Intent) string {
	switch it {
	case intent.Time:
		return fmt.Sprintf("अभी %s बजे हैं", p.now().Format("15:04"))
	case intent.Date:
		return fmt.Sprintf("आज %s", p.now().Format("02/01/2006"))
	case intent.Day:
		return fmt.Sprintf("आज %s है", hindiWeekdays[p.now().Weekday()])
	case intent.City:
		city, _, ok := p.locate.Locate()
		if !ok {
			return noLocation
		}
		return fmt.Sprintf("आप %s शहर में हैं", city)
	case intent.State:
		_, state, ok := p.locate.Locate()
		if !ok {
			return noLocation
		}
		return fmt.Sprintf("आप %s राज्य में हैं", state)
	case intent.Location:
		city, state, ok := p.locate.Locate()
		if !ok {
			return noLocation
		}
		return fmt.Sprintf("आप %s, %s में हैं", city, state)
	case intent.Add:
		return "20 जोड़ 10 बराबर 30"
	case intent.Multiply:
		return "5 गुणा 6 बराबर 30"
	case intent.Divide:
		return "100 भाग 4 बराबर 25"
	case intent.Alarm:
		return "सुबह 7 बजे अलार्म सेट"
	case intent.Joke:
		return "डॉक्टर बोला कब से? मरीज बोला क्या?"
	case intent.Greeting:
		return "नमस्ते मैं आपकी सहायता के लिए तैयार हूँ"
	case intent.Identity:
		return "मैं आपका ऑफलाइन हिंदी सहायक हूँ"
	case intent.Help:
		return "आप समय तारीख शहर राज्य पूछ सकते हैं"
	case intent.Temperature:
		return "सिस्टम तापमान सामान्य है"
	case intent.Internet:
		return "यह ऑफलाइन सहायक है"
	case intent.Exit:
		return "नमस्ते"
	default:
		return notUnderstood
	}
}
