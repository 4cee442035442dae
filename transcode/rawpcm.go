package transcode

import (
	"encoding/binary"
	"fmt"
	"os"
)

// RawPCMDecoder interprets the WAV data chunk byte by byte. It only needs the
// RIFF chunk layout, so it keeps working when no codec library accepts the file.
type RawPCMDecoder struct{}

// NewRawPCMDecoder creates the last-resort PCM decoder
func NewRawPCMDecoder() *RawPCMDecoder {
	return &RawPCMDecoder{}
}

func (d *RawPCMDecoder) Name() string {
	return "raw_pcm"
}

func (d *RawPCMDecoder) Decode(path string) (*AudioBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	format, data, err := readWAVChunks(file, true)
	if err != nil {
		return nil, err
	}
	if enc := format.encoding(); enc != wavFormatPCM {
		return nil, fmt.Errorf("unsupported WAV sample format: tag %d, encoding %d", format.Tag, enc)
	}

	width := (format.BitsPerSample + 7) / 8
	samples, err := decodePCMBytes(data, width)
	if err != nil {
		return nil, err
	}

	channels := format.Channels
	if channels > 0 {
		// drop any trailing partial frame, including the RIFF pad byte
		samples = samples[:len(samples)-len(samples)%channels]
	}

	return newBuffer(samples, channels, format.SampleRate, d.Name())
}

// decodePCMBytes converts little-endian PCM of the given byte width to floats in about [-1, 1].
// 8-bit is unsigned; 16/24/32-bit are signed.
func decodePCMBytes(data []byte, width int) ([]float64, error) {
	if width < 1 || width > 4 {
		return nil, fmt.Errorf("unsupported sample width: %d bytes", width)
	}

	n := len(data) / width
	samples := make([]float64, n)

	switch width {
	case 1:
		for i := 0; i < n; i++ {
			samples[i] = (float64(data[i]) - 128.0) / 128.0
		}
	case 2:
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = float64(v) / 32768.0
		}
	case 3:
		for i := 0; i < n; i++ {
			b := data[i*3 : i*3+3]
			u := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
			// shift the 24-bit value to the top and back to sign-extend it
			v := int32(u<<8) >> 8
			samples[i] = float64(v) / 8388608.0
		}
	case 4:
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(data[i*4:]))
			samples[i] = float64(v) / 2147483648.0
		}
	}

	return samples, nil
}
