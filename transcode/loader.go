package transcode

import (
	"errors"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-overtones/config"
	"github.com/RyanBlaney/sonido-overtones/logging"
)

// Loader tries its decoders in order and returns the first successful decode.
type Loader struct {
	decoders []Decoder
}

// NewLoader creates a loader over an explicit decoder chain
func NewLoader(decoders ...Decoder) *Loader {
	return &Loader{decoders: decoders}
}

// DefaultDecoders returns the chain ordered by fidelity: ffmpeg, go-audio WAV, raw PCM.
func DefaultDecoders(cfg config.DecoderConfig) []Decoder {
	var decoders []Decoder
	if !cfg.DisableFFmpeg {
		decoders = append(decoders, NewFFmpegDecoder(cfg))
	}
	return append(decoders, NewWAVDecoder(), NewRawPCMDecoder())
}

// NewDefaultLoader creates a loader with the default chain
func NewDefaultLoader(cfg config.DecoderConfig) *Loader {
	return NewLoader(DefaultDecoders(cfg)...)
}

// LoadAudio loads path with the default decoder configuration
func LoadAudio(path string) (*AudioBuffer, error) {
	return NewDefaultLoader(config.DefaultConfig().Decoder).Load(path)
}

// Decoders returns the names of the chain, in order
func (l *Loader) Decoders() []string {
	names := make([]string, len(l.decoders))
	for i, d := range l.decoders {
		names[i] = d.Name()
	}
	return names
}

// Load decodes path into a mono AudioBuffer.
// A missing path fails with ErrFileNotFound before any decoder runs.
func (l *Loader) Load(path string) (*AudioBuffer, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_loader",
		"function":  "Load",
		"filename":  path,
		"chain":     l.Decoders(),
	})

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	attempts := make([]DecodeAttempt, 0, len(l.decoders))
	sawEmpty := false

	for _, decoder := range l.decoders {
		buf, err := decoder.Decode(path)
		if err == nil {
			logger.Debug("Audio decoded", logging.Fields{
				"decoder":     decoder.Name(),
				"samples":     len(buf.Samples),
				"sample_rate": buf.SampleRate,
				"channels":    buf.Channels,
			})
			return buf, nil
		}

		if errors.Is(err, ErrEmptySignal) {
			sawEmpty = true
		}
		logger.Debug("Decoder failed, trying next", logging.Fields{
			"decoder": decoder.Name(),
			"error":   err.Error(),
		})
		attempts = append(attempts, DecodeAttempt{Decoder: decoder.Name(), Err: err})
	}

	if sawEmpty {
		return nil, fmt.Errorf("%w: %s decoded to zero samples", ErrEmptySignal, path)
	}

	return nil, &UnreadableAudioError{Path: path, Attempts: attempts}
}
