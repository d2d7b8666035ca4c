// Package notify plays the short listening chime.
package notify

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/speaker"
)

const (
	chimeRate = beep.SampleRate(44100)
	chimeFreq = 880
	chimeLen  = 150 * time.Millisecond
)

var (
	initOnce sync.Once
	initErr  error
)

// initSpeaker runs speaker.Init once and keeps its outcome: a failed
// init must surface on every later call, not only the first one.
func initSpeaker() error {
	initOnce.Do(func() {
		initErr = speaker.Init(chimeRate, chimeRate.N(time.Second/10))
	})
	return initErr
}

// Chime plays a short tone and returns once it has finished, so the
// mic does not open while the speaker is still sounding.
func Chime() error {
	if err := initSpeaker(); err != nil {
		return err
	}

	tone, err := generators.SinTone(chimeRate, chimeFreq)
	if err != nil {
		return err
	}

	done := make(chan bool)
	speaker.Play(beep.Seq(beep.Take(chimeRate.N(chimeLen), tone), beep.Callback(func() {
		done <- true
	})))
	<-done

	return nil
}
