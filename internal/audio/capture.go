// Package audio owns the portaudio devices: mic capture and PCM playback.
package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Recorder captures signed 16-bit mono blocks from the default mic.
type Recorder struct {
	sampleRate int
	blockSize  int
}

func NewRecorder(sampleRate, blockSize int) *Recorder {
	return &Recorder{sampleRate: sampleRate, blockSize: blockSize}
}

// Init must run once before any stream is opened. Failure here is the
// fatal device error: no mic means no assistant.
func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

func (r *Recorder) SampleRate() int { return r.sampleRate }

// Stream captures blocks until ctx is cancelled, sending a copy of each
// into out. The send blocks when out is full: backpressure is the
// overflow policy, chunks are never dropped or reordered. A device read
// error aborts the stream and is returned.
func (r *Recorder) Stream(ctx context.Context, out chan<- []int16) error {
	buf := make([]int16, r.blockSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), len(buf), buf)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start input stream: %w", err)
	}
	defer stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return fmt.Errorf("read input stream: %w", err)
		}

		chunk := make([]int16, len(buf))
		copy(chunk, buf)

		select {
		case out <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Record blocks for a fixed duration and returns the whole utterance.
func (r *Recorder) Record(d time.Duration) ([]int16, error) {
	buf := make([]int16, r.blockSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start input stream: %w", err)
	}
	defer stream.Stop()

	want := int(float64(r.sampleRate) * d.Seconds())
	out := make([]int16, 0, want)

	for len(out) < want {
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read input stream: %w", err)
		}
		out = append(out, buf...)
	}

	return out[:want], nil
}
