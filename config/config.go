package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PSD estimation methods
const (
	PSDWelch       = "welch"
	PSDPeriodogram = "periodogram"
)

// Config is the full analyzer configuration.
type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Decoder  DecoderConfig  `json:"decoder"`
	LogLevel string         `json:"log_level"`
	Workers  int            `json:"workers"`
}

// AnalysisConfig controls spectrum estimation and band reporting.
type AnalysisConfig struct {
	LowCutoffHz     float64 `json:"low_cutoff_hz"` // excluded from the total-power denominator below this
	OvertonesLowHz  float64 `json:"overtones_low_hz"`
	OvertonesHighHz float64 `json:"overtones_high_hz"`
	PitchLowHz      float64 `json:"pitch_low_hz"`
	PitchHighHz     float64 `json:"pitch_high_hz"`
	Decimals        int     `json:"decimals"`
	PSDMethod       string  `json:"psd_method"` // "welch", "periodogram"
}

// DecoderConfig controls the external ffmpeg decoder.
type DecoderConfig struct {
	FFmpegPath    string        `json:"ffmpeg_path"`
	FFprobePath   string        `json:"ffprobe_path"`
	Timeout       time.Duration `json:"timeout"`
	DisableFFmpeg bool          `json:"disable_ffmpeg"`
}

// UnmarshalJSON reads the timeout as a duration string such as "30s".
// A bare number is taken as nanoseconds. Fields absent from data keep their values.
func (d *DecoderConfig) UnmarshalJSON(data []byte) error {
	type plain DecoderConfig
	aux := struct {
		*plain
		Timeout json.RawMessage `json:"timeout"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Timeout) == 0 || string(aux.Timeout) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.Timeout, &text); err == nil {
		timeout, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("decoder timeout: %w", err)
		}
		d.Timeout = timeout
		return nil
	}

	var nanos float64
	if err := json.Unmarshal(aux.Timeout, &nanos); err != nil {
		return fmt.Errorf("decoder timeout must be a duration string or nanoseconds: %s", aux.Timeout)
	}
	d.Timeout = time.Duration(nanos)
	return nil
}

// MarshalJSON writes the timeout in the string form UnmarshalJSON reads
func (d DecoderConfig) MarshalJSON() ([]byte, error) {
	type plain DecoderConfig
	return json.Marshal(struct {
		plain
		Timeout string `json:"timeout"`
	}{plain: plain(d), Timeout: d.Timeout.String()})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			LowCutoffHz:     20,
			OvertonesLowHz:  2000,
			OvertonesHighHz: 8000,
			PitchLowHz:      60,
			PitchHighHz:     300,
			Decimals:        2,
			PSDMethod:       PSDWelch,
		},
		Decoder: DecoderConfig{
			FFmpegPath:  "ffmpeg",  // Assume in PATH
			FFprobePath: "ffprobe", // Assume in PATH
			Timeout:     30 * time.Second,
		},
		LogLevel: "info",
		Workers:  1,
	}
}

// LoadFile reads a JSON config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from OVERTONE_* environment variables.
func (c *Config) ApplyEnv() error {
	floatVars := map[string]*float64{
		"OVERTONE_LOW_CUTOFF_HZ":     &c.Analysis.LowCutoffHz,
		"OVERTONE_OVERTONES_LOW_HZ":  &c.Analysis.OvertonesLowHz,
		"OVERTONE_OVERTONES_HIGH_HZ": &c.Analysis.OvertonesHighHz,
		"OVERTONE_PITCH_LOW_HZ":      &c.Analysis.PitchLowHz,
		"OVERTONE_PITCH_HIGH_HZ":     &c.Analysis.PitchHighHz,
	}
	for name, dst := range floatVars {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, v, err)
		}
		*dst = f
	}

	intVars := map[string]*int{
		"OVERTONE_DECIMALS": &c.Analysis.Decimals,
		"OVERTONE_WORKERS":  &c.Workers,
	}
	for name, dst := range intVars {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, v, err)
		}
		*dst = n
	}

	if v := os.Getenv("OVERTONE_PSD_METHOD"); v != "" {
		c.Analysis.PSDMethod = v
	}
	if v := os.Getenv("OVERTONE_FFMPEG"); v != "" {
		c.Decoder.FFmpegPath = v
	}
	if v := os.Getenv("OVERTONE_FFPROBE"); v != "" {
		c.Decoder.FFprobePath = v
	}
	if v := os.Getenv("OVERTONE_DECODE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid OVERTONE_DECODE_TIMEOUT=%q: %w", v, err)
		}
		c.Decoder.Timeout = d
	}
	if v := os.Getenv("OVERTONE_DISABLE_FFMPEG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OVERTONE_DISABLE_FFMPEG=%q: %w", v, err)
		}
		c.Decoder.DisableFFmpeg = b
	}
	if v := os.Getenv("OVERTONE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return nil
}

// Validate checks the configuration for values the analyzer cannot use
func (c *Config) Validate() error {
	a := c.Analysis
	if a.LowCutoffHz < 0 {
		return fmt.Errorf("low cutoff must be non-negative: %g", a.LowCutoffHz)
	}
	if a.OvertonesLowHz >= a.OvertonesHighHz {
		return fmt.Errorf("overtones band must satisfy low < high: %g >= %g", a.OvertonesLowHz, a.OvertonesHighHz)
	}
	if a.PitchLowHz > a.PitchHighHz {
		return fmt.Errorf("pitch window must satisfy low <= high: %g > %g", a.PitchLowHz, a.PitchHighHz)
	}
	if a.Decimals < 0 || a.Decimals > 12 {
		return fmt.Errorf("decimals must be between 0 and 12: %d", a.Decimals)
	}
	switch a.PSDMethod {
	case PSDWelch, PSDPeriodogram:
	default:
		return fmt.Errorf("unknown psd method: %q", a.PSDMethod)
	}

	if !c.Decoder.DisableFFmpeg && c.Decoder.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", c.Decoder.Timeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1: %d", c.Workers)
	}

	return nil
}
