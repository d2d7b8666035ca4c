package respond

import (
	"strings"
	"testing"
	"time"

	"sahayak/internal/intent"
)

type fixedLocator struct {
	city, state string
	ok          bool
}

func (f fixedLocator) Locate() (string, string, bool) { return f.city, f.state, f.ok }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPlanTime(t *testing.T) {
	at := time.Date(2025, 3, 14, 14, 5, 0, 0, time.UTC)
	p := NewPlanner(fixedClock(at), fixedLocator{})

	got := p.Plan(intent.Time)
	if got != "अभी 14:05 बजे हैं" {
		t.Fatalf("got=%q, want अभी 14:05 बजे हैं", got)
	}
}

func TestPlanDate(t *testing.T) {
	at := time.Date(2025, 3, 14, 14, 5, 0, 0, time.UTC)
	p := NewPlanner(fixedClock(at), fixedLocator{})

	got := p.Plan(intent.Date)
	if got != "आज 14/03/2025" {
		t.Fatalf("got=%q, want आज 14/03/2025", got)
	}
}

func TestPlanDayHindiWeekday(t *testing.T) {
	// 2025-03-14 is a Friday.
	at := time.Date(2025, 3, 14, 14, 5, 0, 0, time.UTC)
	p := NewPlanner(fixedClock(at), fixedLocator{})

	got := p.Plan(intent.Day)
	if got != "आज शुक्रवार है" {
		t.Fatalf("got=%q, want आज शुक्रवार है", got)
	}
}

func TestPlanLocationIntents(t *testing.T) {
	p := NewPlanner(nil, fixedLocator{city: "चेन्नई", state: "तमिलनाडु", ok: true})

	if got := p.Plan(intent.City); got != "आप चेन्नई शहर में हैं" {
		t.Fatalf("city got=%q", got)
	}
	if got := p.Plan(intent.State); got != "आप तमिलनाडु राज्य में हैं" {
		t.Fatalf("state got=%q", got)
	}
	if got := p.Plan(intent.Location); got != "आप चेन्नई, तमिलनाडु में हैं" {
		t.Fatalf("location got=%q", got)
	}
}

func TestPlanNoFix(t *testing.T) {
	p := NewPlanner(nil, fixedLocator{})

	for _, it := range []intent.Intent{intent.City, intent.State, intent.Location} {
		if got := p.Plan(it); got != "स्थान नहीं मिला" {
			t.Errorf("Plan(%s)=%q, want स्थान नहीं मिला", it, got)
		}
	}
}

func TestPlanNilLocator(t *testing.T) {
	p := NewPlanner(nil, nil)

	for _, it := range []intent.Intent{intent.City, intent.State, intent.Location} {
		if got := p.Plan(it); got != "स्थान नहीं मिला" {
			t.Errorf("Plan(%s)=%q, want स्थान नहीं मिला", it, got)
		}
	}
}

func TestPlanUnknown(t *testing.T) {
	p := NewPlanner(nil, fixedLocator{})

	if got := p.Plan(intent.Unknown); got != "समझा नहीं" {
		t.Fatalf("got=%q, want समझा नहीं", got)
	}
}

func TestPlanTotalOverTable(t *testing.T) {
	p := NewPlanner(nil, fixedLocator{ok: true, city: "चेन्नई", state: "तमिलनाडु"})

	for _, e := range intent.DefaultTable() {
		reply := p.Plan(e.Intent)
		if strings.TrimSpace(reply) == "" {
			t.Errorf("Plan(%s) returned an empty reply", e.Intent)
		}
	}
}

func TestPlanExit(t *testing.T) {
	p := NewPlanner(nil, fixedLocator{})

	if got := p.Plan(intent.Exit); got != "नमस्ते" {
		t.Fatalf("got=%q, want नमस्ते", got)
	}
}
