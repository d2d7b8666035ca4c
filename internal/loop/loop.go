// Package loop runs the capture → recognize → classify → respond →
// speak cycle and owns the exit condition.
package loop

import (
	"context"
	log "log/slog"
	"time"

	"sahayak/internal/asr"
	"sahayak/internal/intent"
	"sahayak/internal/respond"
	"sahayak/internal/tts"
)

type State int

const (
	Idle State = iota
	Listening
	Recognizing
	Classifying
	Responding
	Stopped
)

// Capturer delivers mic audio either as a continuous chunk stream or
// as one fixed-duration recording.
type Capturer interface {
	Stream(ctx context.Context, out chan<- []int16) error
	Record(d time.Duration) ([]int16, error)
}

// Recognizer is the accumulate-and-finalize speech engine boundary.
type Recognizer interface {
	Feed(chunk []int16) (asr.Result, error)
	Transcribe(samples []int16) (string, error)
	Reset()
}

type Options struct {
	// QueueDepth caps the streaming chunk queue; the producer blocks
	// when it is full.
	QueueDepth int
	// RecordFor is the fixed capture length per turn in turn mode.
	RecordFor time.Duration
	// Trigger gates turn mode (press to talk). Nil runs ungated.
	Trigger <-chan struct{}
	// Chime plays the listening prompt. Nil disables it.
	Chime func() error
	// RetryBackoff spaces out retries after a recoverable device
	// failure so a broken mic does not spin the loop hot.
	RetryBackoff time.Duration
}

// maxStreamReopens bounds how often a failed capture stream is
// reopened before the failure is treated as fatal.
const maxStreamReopens = 3

// Loop holds every component handle explicitly; no package-level state.
// Cycles are strictly sequential, so one finalized utterance produces
// exactly one spoken reply and Speak calls never overlap.
type Loop struct {
	capture Capturer
	rec     Recognizer
	cls     *intent.Classifier
	plan    *respond.Planner
	speaker tts.Speaker
	opts    Options

	state State
}

func New(capture Capturer, rec Recognizer, cls *intent.Classifier, plan *respond.Planner, speaker tts.Speaker, opts Options) *Loop {
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 32
	}
	if opts.RecordFor <= 0 {
		opts.RecordFor = 2 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &Loop{
		capture: capture,
		rec:     rec,
		cls:     cls,
		plan:    plan,
		speaker: speaker,
		opts:    opts,
	}
}

func (l *Loop) State() State { return l.state }

// Run drives the streaming shape: one producer goroutine fills the
// bounded chunk queue, this goroutine consumes it. Returns when the
// farewell for an exit utterance has been spoken or once ctx is
// cancelled. A mid-run device read error aborts the current utterance
// and reopens the stream; only repeated failures are fatal.
func (l *Loop) Run(ctx context.Context) error {
	reopens := 0

	for {
		stopped, err := l.runStream(ctx)
		if stopped {
			l.state = Stopped
			return nil
		}

		if ctx.Err() != nil {
			l.state = Stopped
			return err
		}

		reopens++
		if reopens > maxStreamReopens {
			l.state = Stopped
			return err
		}

		log.Error("Capture stream failed, dropping utterance and reopening", "err", err, "attempt", reopens)
		l.rec.Reset()
		l.pause(ctx)
	}
}

// runStream runs one capture stream lifetime. stopped is true once the
// exit farewell has been spoken; otherwise err reports why the stream
// ended (device error or ctx cancellation).
func (l *Loop) runStream(ctx context.Context) (stopped bool, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := make(chan []int16, l.opts.QueueDepth)
	capErr := make(chan error, 1)

	go func() {
		capErr <- l.capture.Stream(ctx, chunks)
		close(chunks)
	}()

	l.state = Listening

	for chunk := range chunks {
		l.state = Recognizing

		res, err := l.rec.Feed(chunk)
		if err != nil {
			log.Error("Recognizer failed, dropping utterance", "err", err)
			l.rec.Reset()
			l.state = Listening
			continue
		}

		if !res.Finalized {
			l.state = Listening
			continue
		}

		if res.Text == "" {
			log.Info("No speech detected")
			l.state = Listening
			continue
		}

		stop := l.respondTo(res.Text)
		l.rec.Reset()

		if stop {
			return true, nil
		}

		l.state = Listening
	}

	return false, <-capErr
}

// pause sleeps for the retry backoff, waking early on cancellation.
func (l *Loop) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(l.opts.RetryBackoff):
	}
}

// RunTurns drives the turn-based shape: wait for the trigger, chime,
// record a fixed window, transcribe, respond. Empty transcripts
// re-prompt instead of producing a reply.
func (l *Loop) RunTurns(ctx context.Context) error {
	for {
		l.state = Idle

		if l.opts.Trigger != nil {
			select {
			case <-ctx.Done():
				l.state = Stopped
				return ctx.Err()
			case <-l.opts.Trigger:
			}
		} else {
			select {
			case <-ctx.Done():
				l.state = Stopped
				return ctx.Err()
			default:
			}
		}

		if l.opts.Chime != nil {
			if err := l.opts.Chime(); err != nil {
				log.Warn("Chime failed", "err", err)
			}
		}

		l.state = Listening
		log.Info("Listening", "for", l.opts.RecordFor)

		pcm, err := l.capture.Record(l.opts.RecordFor)
		if err != nil {
			log.Error("Failed to record, skipping turn", "err", err)
			l.pause(ctx)
			continue
		}

		l.state = Recognizing

		text, err := l.rec.Transcribe(pcm)
		if err != nil {
			log.Error("Failed to transcribe", "err", err)
			l.pause(ctx)
			continue
		}

		if text == "" {
			log.Info("No speech detected")
			continue
		}

		if l.respondTo(text) {
			l.state = Stopped
			return nil
		}
	}
}

// respondTo runs exactly one classify/plan/speak for one utterance and
// reports whether the loop should stop. The farewell is fully spoken
// before the stop is reported: Speak is synchronous.
func (l *Loop) respondTo(text string) bool {
	l.state = Classifying
	it := l.cls.Classify(text)

	l.state = Responding
	reply := l.plan.Plan(it)

	log.Info("Recognized", "text", text)
	log.Info("Classified", "intent", it)
	log.Info("Replying", "text", reply)

	if err := l.speaker.Speak(reply); err != nil {
		log.Error("Failed to voice out", "err", err)
	}

	return it == intent.Exit
}
