// Package asr wraps the Vosk engine behind a feed/transcribe protocol.
package asr

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	vosk "github.com/alphacep/vosk-api/go"
)

// Result is one recognizer report. Finalized flips true once the
// engine's endpoint detector closes the utterance; Text is empty when
// no decodable speech was present.
type Result struct {
	Finalized bool
	Text      string
}

type voskResult struct {
	Text string `json:"text"`
}

// Recognizer owns one Vosk model and decoder. Utterances must not leak
// decoder state across turns: Transcribe brackets every call with Reset,
// and the streaming caller resets after each finalized utterance.
type Recognizer struct {
	model *vosk.VoskModel
	rec   *vosk.VoskRecognizer
}

func New(modelPath string, sampleRate float64) (*Recognizer, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, sampleRate)
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("new recognizer: %w", err)
	}

	return &Recognizer{model: model, rec: rec}, nil
}

// Feed accumulates one chunk. Finalized is true with the utterance
// transcript once the engine endpoints; partial chunks report false.
func (r *Recognizer) Feed(chunk []int16) (Result, error) {
	if r.rec == nil {
		return Result{}, errors.New("recognizer closed")
	}

	if r.rec.AcceptWaveform(pcmBytes(chunk)) == 0 {
		return Result{}, nil
	}

	text, err := decodeText(r.rec.Result())
	if err != nil {
		return Result{}, err
	}

	return Result{Finalized: true, Text: text}, nil
}

// Transcribe decodes one complete pre-recorded utterance. The decoder
// is reset before and after so nothing carries into the next turn.
func (r *Recognizer) Transcribe(samples []int16) (string, error) {
	if r.rec == nil {
		return "", errors.New("recognizer closed")
	}

	r.rec.Reset()
	r.rec.AcceptWaveform(pcmBytes(samples))
	text, err := decodeText(r.rec.FinalResult())
	r.rec.Reset()
	if err != nil {
		return "", err
	}

	return text, nil
}

func (r *Recognizer) Reset() {
	if r.rec != nil {
		r.rec.Reset()
	}
}

func (r *Recognizer) Close() {
	if r.rec != nil {
		r.rec.Free()
		r.rec = nil
	}
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
}

func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func decodeText(resultJSON string) (string, error) {
	var res voskResult
	if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}
	return res.Text, nil
}
