package transcode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-overtones/algorithms/common"
)

var (
	// ErrFileNotFound is returned before any decode attempt when the input path does not exist.
	ErrFileNotFound = errors.New("audio file not found")

	// ErrUnreadableAudio is matched by *UnreadableAudioError once every decoder has failed.
	ErrUnreadableAudio = errors.New("unreadable audio")

	// ErrEmptySignal is returned when decoding produced zero samples.
	ErrEmptySignal = common.ErrEmptySignal
)

// AudioBuffer is a decoded, single-channel signal at the source's native sample rate.
// Samples are in approximately [-1, 1]. Treat it as immutable once returned.
type AudioBuffer struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"` // channel count of the source before the mono mix
	Decoder    string    `json:"decoder"`  // name of the strategy that produced the buffer
}

// DurationSeconds returns len(Samples)/SampleRate
func (b *AudioBuffer) DurationSeconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Decoder is one strategy in the loader's fallback chain
type Decoder interface {
	Name() string
	Decode(path string) (*AudioBuffer, error)
}

// DecodeAttempt records why a decoder in the chain failed
type DecodeAttempt struct {
	Decoder string
	Err     error
}

// UnreadableAudioError carries every failed attempt for a path
type UnreadableAudioError struct {
	Path     string
	Attempts []DecodeAttempt
}

func (e *UnreadableAudioError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Decoder, a.Err))
	}
	return fmt.Sprintf("could not read audio file %q (%s)", e.Path, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrUnreadableAudio) hold
func (e *UnreadableAudioError) Is(target error) bool {
	return target == ErrUnreadableAudio
}

// Unwrap exposes the per-decoder causes
func (e *UnreadableAudioError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

func newBuffer(interleaved []float64, channels, sampleRate int, decoder string) (*AudioBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	samples := common.MixToMono(interleaved, channels)
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}

	return &AudioBuffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
		Decoder:    decoder,
	}, nil
}
