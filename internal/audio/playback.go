package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const playbackBlock = 1024

// Player writes raw s16le mono PCM to the default output device.
// One stream is held open for the program lifetime so per-utterance
// playback adds no device-open latency.
type Player struct {
	sampleRate int
	stream     *portaudio.Stream
	buf        []int16
}

// NewPlayer opens the output stream. The recorder must have run Init
// first; portaudio is initialized once per process.
func NewPlayer(sampleRate int) (*Player, error) {
	buf := make([]int16, playbackBlock)

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open output stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start output stream: %w", err)
	}

	return &Player{sampleRate: sampleRate, stream: stream, buf: buf}, nil
}

// Play writes the PCM bytes synchronously; it returns after the last
// block is handed to the device.
func (p *Player) Play(pcm []byte) error {
	samples := BytesToSamples(pcm)

	for off := 0; off < len(samples); off += len(p.buf) {
		n := copy(p.buf, samples[off:])
		for i := n; i < len(p.buf); i++ {
			p.buf[i] = 0
		}
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("write output stream: %w", err)
		}
	}

	return nil
}

func (p *Player) Close() {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
	}
}

// BytesToSamples reinterprets little-endian s16 bytes as samples.
// A trailing odd byte is ignored.
func BytesToSamples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}
