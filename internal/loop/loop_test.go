package loop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sahayak/internal/asr"
	"sahayak/internal/intent"
	"sahayak/internal/respond"
)

type fakeCapture struct {
	chunks    [][]int16
	recorded  [][]int16
	recordIdx int
}

func (f *fakeCapture) Stream(ctx context.Context, out chan<- []int16) error {
	for _, c := range f.chunks {
		select {
		case out <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeCapture) Record(time.Duration) ([]int16, error) {
	if f.recordIdx >= len(f.recorded) {
		return nil, context.Canceled
	}
	buf := f.recorded[f.recordIdx]
	f.recordIdx++
	return buf, nil
}

// fakeRec replays scripted results: one Feed result per chunk, one
// transcript per Record in turn mode.
type fakeRec struct {
	feeds       []asr.Result
	feedIdx     int
	transcripts []string
	transIdx    int
	resets      int
}

func (f *fakeRec) Feed([]int16) (asr.Result, error) {
	if f.feedIdx >= len(f.feeds) {
		return asr.Result{}, nil
	}
	res := f.feeds[f.feedIdx]
	f.feedIdx++
	return res, nil
}

func (f *fakeRec) Transcribe([]int16) (string, error) {
	if f.transIdx >= len(f.transcripts) {
		return "", nil
	}
	text := f.transcripts[f.transIdx]
	f.transIdx++
	return text, nil
}

func (f *fakeRec) Reset() { f.resets++ }

type fakeSpeaker struct {
	spoken []string
}

func (f *fakeSpeaker) Speak(text string) error {
	f.spoken = append(f.spoken, text)
	return nil
}

type fakeLocator struct {
	city, state string
	ok          bool
}

func (f fakeLocator) Locate() (string, string, bool) { return f.city, f.state, f.ok }

func newTestPlanner(loc respond.Locator) *respond.Planner {
	at := time.Date(2025, 3, 14, 14, 5, 0, 0, time.UTC)
	return respond.NewPlanner(func() time.Time { return at }, loc)
}

func TestRunStreamingTimeThenExit(t *testing.T) {
	capture := &fakeCapture{chunks: [][]int16{{1}, {2}, {3}, {4}}}
	rec := &fakeRec{feeds: []asr.Result{
		{},
		{Finalized: true, Text: "अभी समय क्या है"},
		{Finalized: true, Text: ""},
		{Finalized: true, Text: "बंद करो"},
	}}
	speaker := &fakeSpeaker{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), speaker, Options{QueueDepth: 2})

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(speaker.spoken) != 2 {
		t.Fatalf("spoke %v, want exactly two replies", speaker.spoken)
	}
	if !strings.Contains(speaker.spoken[0], "14:05") {
		t.Errorf("time reply %q does not embed 14:05", speaker.spoken[0])
	}
	if speaker.spoken[1] != "नमस्ते" {
		t.Errorf("farewell=%q, want नमस्ते", speaker.spoken[1])
	}
	if l.State() != Stopped {
		t.Fatalf("state=%v, want Stopped", l.State())
	}
	if rec.resets != 2 {
		t.Errorf("recognizer reset %d times, want once per handled utterance", rec.resets)
	}
}

func TestRunStreamingCancel(t *testing.T) {
	capture := &fakeCapture{}
	rec := &fakeRec{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), &fakeSpeaker{}, Options{})

	if err := l.Run(ctx); err != context.Canceled {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if l.State() != Stopped {
		t.Fatalf("state=%v, want Stopped", l.State())
	}
}

func TestRunTurnsRepromptsOnSilence(t *testing.T) {
	capture := &fakeCapture{recorded: [][]int16{{1}, {2}}}
	rec := &fakeRec{transcripts: []string{"", "बंद करो"}}
	speaker := &fakeSpeaker{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), speaker, Options{})

	if err := l.RunTurns(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The silent turn produced no reply; only the farewell was spoken.
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "नमस्ते" {
		t.Fatalf("spoke %v, want [नमस्ते]", speaker.spoken)
	}
	if l.State() != Stopped {
		t.Fatalf("state=%v, want Stopped", l.State())
	}
}

func TestRunTurnsGpsUnavailable(t *testing.T) {
	capture := &fakeCapture{recorded: [][]int16{{1}, {2}}}
	rec := &fakeRec{transcripts: []string{"मैं किस शहर में हूँ", "अलविदा"}}
	speaker := &fakeSpeaker{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), speaker, Options{})

	if err := l.RunTurns(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(speaker.spoken) != 2 {
		t.Fatalf("spoke %v, want two replies", speaker.spoken)
	}
	if speaker.spoken[0] != "स्थान नहीं मिला" {
		t.Errorf("city reply=%q, want स्थान नहीं मिला", speaker.spoken[0])
	}
}

// flakyCapture fails its first Stream/Record calls before behaving.
type flakyCapture struct {
	fakeCapture
	streamFailures int
	streamCalls    int
	recordFailures int
	recordCalls    int
}

func (f *flakyCapture) Stream(ctx context.Context, out chan<- []int16) error {
	f.streamCalls++
	if f.streamCalls <= f.streamFailures {
		return errors.New("device read failed")
	}
	return f.fakeCapture.Stream(ctx, out)
}

func (f *flakyCapture) Record(d time.Duration) ([]int16, error) {
	f.recordCalls++
	if f.recordCalls <= f.recordFailures {
		return nil, errors.New("device busy")
	}
	return f.fakeCapture.Record(d)
}

func TestRunStreamReopensAfterDeviceError(t *testing.T) {
	capture := &flakyCapture{
		fakeCapture:    fakeCapture{chunks: [][]int16{{1}}},
		streamFailures: 1,
	}
	rec := &fakeRec{feeds: []asr.Result{{Finalized: true, Text: "बंद करो"}}}
	speaker := &fakeSpeaker{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), speaker, Options{RetryBackoff: time.Millisecond})

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capture.streamCalls != 2 {
		t.Fatalf("stream opened %d times, want 2", capture.streamCalls)
	}
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "नमस्ते" {
		t.Fatalf("spoke %v, want [नमस्ते]", speaker.spoken)
	}
	if rec.resets == 0 {
		t.Fatal("recognizer was not reset after the aborted utterance")
	}
	if l.State() != Stopped {
		t.Fatalf("state=%v, want Stopped", l.State())
	}
}

func TestRunStreamGivesUpAfterRepeatedErrors(t *testing.T) {
	capture := &flakyCapture{streamFailures: maxStreamReopens + 10}
	rec := &fakeRec{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), &fakeSpeaker{}, Options{RetryBackoff: time.Millisecond})

	if err := l.Run(context.Background()); err == nil {
		t.Fatal("expected an error once reopens are exhausted")
	}
	if capture.streamCalls != 1+maxStreamReopens {
		t.Fatalf("stream opened %d times, want %d", capture.streamCalls, 1+maxStreamReopens)
	}
	if l.State() != Stopped {
		t.Fatalf("state=%v, want Stopped", l.State())
	}
}

func TestRunTurnsRetriesAfterRecordError(t *testing.T) {
	capture := &flakyCapture{
		fakeCapture:    fakeCapture{recorded: [][]int16{{1}}},
		recordFailures: 1,
	}
	rec := &fakeRec{transcripts: []string{"बंद करो"}}
	speaker := &fakeSpeaker{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), speaker, Options{RetryBackoff: time.Millisecond})

	if err := l.RunTurns(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capture.recordCalls != 2 {
		t.Fatalf("recorded %d times, want a retry after the failure", capture.recordCalls)
	}
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "नमस्ते" {
		t.Fatalf("spoke %v, want [नमस्ते]", speaker.spoken)
	}
}

func TestRunTurnsTriggerGate(t *testing.T) {
	capture := &fakeCapture{recorded: [][]int16{{1}}}
	rec := &fakeRec{transcripts: []string{"बंद करो"}}
	speaker := &fakeSpeaker{}

	trigger := make(chan struct{}, 1)
	trigger <- struct{}{}

	l := New(capture, rec, intent.NewClassifier(), newTestPlanner(fakeLocator{}), speaker, Options{Trigger: trigger})

	if err := l.RunTurns(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "नमस्ते" {
		t.Fatalf("spoke %v, want [नमस्ते]", speaker.spoken)
	}
}
