package transcode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// tail shared by every KSDATAFORMAT_SUBTYPE_* GUID; the first two bytes carry the format code
var ksDataFormatTail = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// wavFormat is a decoded fmt chunk
type wavFormat struct {
	Tag           uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	SubFormat     uint16 // only set for WAVE_FORMAT_EXTENSIBLE
}

// encoding returns the sample coding, looking through the extensible wrapper
func (f wavFormat) encoding() uint16 {
	if f.Tag == wavFormatExtensible {
		return f.SubFormat
	}
	return f.Tag
}

// parseFmtChunk decodes the body of a fmt chunk.
// Extensible chunks must carry the 22-byte extension with a KSDATAFORMAT SubFormat.
func parseFmtChunk(b []byte) (wavFormat, error) {
	if len(b) < 16 {
		return wavFormat{}, fmt.Errorf("fmt chunk too short: %d bytes", len(b))
	}

	le := binary.LittleEndian
	f := wavFormat{
		Tag:           le.Uint16(b[0:]),
		Channels:      int(le.Uint16(b[2:])),
		SampleRate:    int(le.Uint32(b[4:])),
		BitsPerSample: int(le.Uint16(b[14:])),
	}
	if f.Tag != wavFormatExtensible {
		return f, nil
	}

	if len(b) < 40 {
		return wavFormat{}, fmt.Errorf("extensible fmt chunk too short: %d bytes", len(b))
	}
	if cbSize := le.Uint16(b[16:]); cbSize < 22 {
		return wavFormat{}, fmt.Errorf("extensible fmt chunk has cbSize %d, want at least 22", cbSize)
	}
	guid := b[24:40]
	if !bytes.Equal(guid[2:], ksDataFormatTail) {
		return wavFormat{}, fmt.Errorf("unknown extensible SubFormat GUID % x", guid)
	}
	f.SubFormat = le.Uint16(guid)
	return f, nil
}

// readWAVChunks walks the RIFF chunks of r and returns the fmt chunk and,
// when wantData is set, the raw data chunk.
func readWAVChunks(r io.Reader, wantData bool) (wavFormat, []byte, error) {
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return wavFormat{}, nil, fmt.Errorf("could not parse RIFF header: %w", err)
	}
	if parser.Format != riff.WavFormatID {
		return wavFormat{}, nil, fmt.Errorf("not a WAVE container: %q", parser.Format[:])
	}

	var (
		format  wavFormat
		haveFmt bool
		data    []byte
	)
	for !haveFmt || (wantData && data == nil) {
		chunk, err := parser.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return wavFormat{}, nil, fmt.Errorf("could not read chunk: %w", err)
		}

		switch {
		case chunk.ID == riff.FmtID && !haveFmt:
			body, err := io.ReadAll(io.LimitReader(chunk, int64(chunk.Size)))
			if err != nil {
				return wavFormat{}, nil, fmt.Errorf("could not read fmt chunk: %w", err)
			}
			if format, err = parseFmtChunk(body); err != nil {
				return wavFormat{}, nil, err
			}
			haveFmt = true
		case chunk.ID == riff.DataFormatID && wantData && data == nil:
			data, err = io.ReadAll(io.LimitReader(chunk, int64(chunk.Size)))
			if err != nil {
				return wavFormat{}, nil, fmt.Errorf("could not read data chunk: %w", err)
			}
		default:
			chunk.Drain()
		}
	}

	if !haveFmt {
		return wavFormat{}, nil, fmt.Errorf("fmt chunk not found")
	}
	if wantData && data == nil {
		return wavFormat{}, nil, fmt.Errorf("data chunk not found")
	}
	return format, data, nil
}
