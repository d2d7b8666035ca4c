// Package tts bridges text to speech through a piper subprocess.
package tts

import (
	"fmt"
	"io"
	log "log/slog"
	"os/exec"
	"time"
)

// SampleRate is piper's raw output format: s16le mono at 22050 Hz.
const SampleRate = 22050

const bytesPerSample = 2

// Player is the audio sink the synthesized PCM is forwarded to.
type Player interface {
	Play(pcm []byte) error
}

// Speaker converts one reply to audible speech.
type Speaker interface {
	Speak(text string) error
}

// Bridge keeps one piper process alive for the whole run so no call
// pays the model-load cost. One request is one text line in and a
// fixed byte window out; only one Speak may be in flight at a time,
// which the loop's sequential cycle already guarantees.
type Bridge struct {
	bin    string
	model  string
	window time.Duration
	player Player

	cmd *exec.Cmd
	in  io.WriteCloser
	out io.Reader

	fallback Speaker
	degraded bool
}

func NewBridge(model string, window time.Duration, player Player) *Bridge {
	return &Bridge{
		bin:      "piper",
		model:    model,
		window:   window,
		player:   player,
		fallback: NewFileSynth(model),
	}
}

// Start spawns the engine. Call Speak with a short warm-up line right
// after so the first user turn is not the one paying synthesis spin-up.
func (b *Bridge) Start() error {
	return b.spawn()
}

func (b *Bridge) spawn() error {
	cmd := exec.Command(b.bin, "--model", b.model, "--output-raw")

	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("piper stdin: %w", err)
	}

	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("piper stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start piper: %w", err)
	}

	b.cmd, b.in, b.out = cmd, in, out
	return nil
}

func (b *Bridge) kill() {
	if b.in != nil {
		b.in.Close()
		b.in = nil
	}
	if b.cmd != nil && b.cmd.Process != nil {
		b.cmd.Process.Kill()
		b.cmd.Wait()
	}
	b.cmd, b.out = nil, nil
}

// Speak synthesizes text and plays it. Empty text is a no-op and does
// not touch the subprocess. If the process has died the bridge respawns
// it once and retries; a failed respawn degrades this bridge to the
// spawn-per-call fallback for the rest of the run.
func (b *Bridge) Speak(text string) error {
	if text == "" {
		return nil
	}

	if b.degraded {
		return b.fallback.Speak(text)
	}

	pcm, err := b.synth(text)
	if err != nil {
		log.Warn("piper pipe failed, respawning", "err", err)
		b.kill()

		if err := b.spawn(); err == nil {
			pcm, err = b.synth(text)
		}
		if err != nil {
			log.Warn("piper respawn failed, degrading to file synthesis", "err", err)
			b.degraded = true
			return b.fallback.Speak(text)
		}
	}

	return b.player.Play(pcm)
}

// synth writes one line and reads the fixed byte window. The window is
// sized by configuration, not by measured speech duration; long replies
// truncate and short ones block until the engine pads the window.
func (b *Bridge) synth(text string) ([]byte, error) {
	if b.in == nil {
		if err := b.spawn(); err != nil {
			return nil, err
		}
	}

	if _, err := io.WriteString(b.in, text+"\n"); err != nil {
		return nil, fmt.Errorf("write text: %w", err)
	}

	window := int(float64(SampleRate*bytesPerSample) * b.window.Seconds())
	buf := make([]byte, window)

	n, err := io.ReadFull(b.out, buf)
	if n == 0 && err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	return buf[:n], nil
}

func (b *Bridge) Close() {
	b.kill()
}
