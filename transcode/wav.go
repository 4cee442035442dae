package transcode

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format tags
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder reads WAV files through go-audio/wav.
// Integer PCM is divided by the largest positive value of its bit depth;
// 32-bit IEEE float passes through unchanged. WAVE_FORMAT_EXTENSIBLE files
// are decoded by their SubFormat.
type WAVDecoder struct{}

// NewWAVDecoder creates a go-audio backed WAV decoder
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

func (d *WAVDecoder) Name() string {
	return "wav"
}

func (d *WAVDecoder) Decode(path string) (*AudioBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	samples := make([]float64, len(buf.Data))

	encoding := decoder.WavAudioFormat
	if encoding == wavFormatExtensible {
		// go-audio never reads the SubFormat, so look it up in the fmt chunk
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("could not rewind file: %w", err)
		}
		format, _, err := readWAVChunks(file, false)
		if err != nil {
			return nil, err
		}
		encoding = format.encoding()
	}

	switch encoding {
	case wavFormatIEEEFloat:
		if bitDepth != 32 {
			return nil, fmt.Errorf("unsupported float bit depth: %d", bitDepth)
		}
		// the int decoder hands back the raw 32 bits of each float
		for i, v := range buf.Data {
			samples[i] = float64(math.Float32frombits(uint32(int32(v))))
		}
	case wavFormatPCM:
		scale := float64(audio.IntMaxSignedValue(bitDepth))
		if scale == 0 {
			return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
		}
		// 8-bit WAV is unsigned, centered on 128
		offset := 0
		if bitDepth == 8 {
			offset = 128
		}
		for i, v := range buf.Data {
			samples[i] = float64(v-offset) / scale
		}
	default:
		return nil, fmt.Errorf("unsupported WAV sample format: tag %d, encoding %d", decoder.WavAudioFormat, encoding)
	}

	return newBuffer(samples, int(decoder.NumChans), int(decoder.SampleRate), d.Name())
}
