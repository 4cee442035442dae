package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-overtones/config"
	"github.com/RyanBlaney/sonido-overtones/logging"
)

// FFmpegDecoder decodes any container/codec ffmpeg understands at full float precision.
// Output keeps the native sample rate and channel layout; the mono mix happens here,
// not in ffmpeg, so every channel gets the same weight.
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// NewFFmpegDecoder creates an ffmpeg-backed decoder
func NewFFmpegDecoder(cfg config.DecoderConfig) *FFmpegDecoder {
	d := &FFmpegDecoder{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		timeout:     cfg.Timeout,
	}
	if d.ffmpegPath == "" {
		d.ffmpegPath = "ffmpeg"
	}
	if d.ffprobePath == "" {
		d.ffprobePath = "ffprobe"
	}
	if d.timeout <= 0 {
		d.timeout = 30 * time.Second
	}
	return d
}

func (d *FFmpegDecoder) Name() string {
	return "ffmpeg"
}

// Decode probes the file for its native format, then decodes it to f64le PCM
func (d *FFmpegDecoder) Decode(path string) (*AudioBuffer, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "Decode",
		"decoder":   d.Name(),
		"filename":  path,
	})

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	metadata, err := d.probeAudioFile(ctx, path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	args := d.buildFFmpegArgs(path)
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	startTime := time.Now()
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, fmt.Errorf("ffmpeg decode failed: %w, stderr: %s", err, strings.TrimSpace(string(exitError.Stderr)))
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	logger.Debug("FFmpeg decode completed", logging.Fields{
		"output_bytes": len(output),
		"decode_time":  time.Since(startTime).Seconds(),
	})

	return newBuffer(samples, metadata.Channels, metadata.SampleRate, d.Name())
}

// buildFFmpegArgs decodes the first audio stream without resampling or downmixing
func (d *FFmpegDecoder) buildFFmpegArgs(path string) []string {
	return []string{
		"-v", "error", // Suppress verbose output
		"-nostdin",
		"-i", path,
		"-map", "0:a:0",
		"-vn",
		"-f", "f64le", // Output raw float64 little-endian
		"-acodec", "pcm_f64le",
		"pipe:1",
	}
}

// probeAudioFile uses ffprobe to get audio information from a file
func (d *FFmpegDecoder) probeAudioFile(ctx context.Context, path string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		path,
	}

	output, err := exec.CommandContext(ctx, d.ffprobePath, args...).Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, strings.TrimSpace(string(exitError.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]

	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}

	// the native rate is reported as-is; guessing one would silently resample the analysis
	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate in ffprobe output: %q", stream.SampleRate)
	}

	if stream.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	bitrate, err := strconv.Atoi(stream.BitRate)
	if err != nil {
		bitrate = 0
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// bytesToFloat64 converts raw f64le bytes to []float64, dropping a trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	sampleCount := len(data) / 8
	if sampleCount == 0 {
		return nil
	}

	samples := make([]float64, sampleCount)
	for i := 0; i < sampleCount; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// Available checks if ffmpeg and ffprobe can be executed
func (d *FFmpegDecoder) Available() error {
	if _, err := exec.LookPath(d.ffmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.ffmpegPath, err)
	}
	if _, err := exec.LookPath(d.ffprobePath); err != nil {
		return fmt.Errorf("ffprobe not found at %s: %w", d.ffprobePath, err)
	}
	return nil
}
