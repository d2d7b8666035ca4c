package tts

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"sahayak/internal/audio"
)

// FileSynth is the spawn-per-call path: run piper to completion, wrap
// the PCM into a scratch WAV and hand it to aplay. Seconds of latency
// per call, but no persistent process to keep alive.
type FileSynth struct {
	model string
}

func NewFileSynth(model string) *FileSynth {
	return &FileSynth{model: model}
}

func (f *FileSynth) Speak(text string) error {
	if text == "" {
		return nil
	}

	cmd := exec.Command("piper", "--model", f.model, "--output-raw")
	cmd.Stdin = strings.NewReader(text + "\n")

	raw, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("run piper: %w", err)
	}

	path, err := writeScratchWAV(raw)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	if err := exec.Command("aplay", "-q", path).Run(); err != nil {
		return fmt.Errorf("play %s: %w", path, err)
	}

	return nil
}

func writeScratchWAV(pcm []byte) (string, error) {
	file, err := os.CreateTemp("", "sahayak-*.wav")
	if err != nil {
		return "", fmt.Errorf("scratch file: %w", err)
	}
	defer file.Close()

	samples := audio.BytesToSamples(pcm)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(file, SampleRate, 16, 1, 1)
	if err := enc.Write(&gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		enc.Close()
		return "", fmt.Errorf("encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("finalize wav: %w", err)
	}

	return file.Name(), nil
}
