package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Analysis.OvertonesLowHz != 2000 || cfg.Analysis.OvertonesHighHz != 8000 {
		t.Errorf("overtones band = %g-%g, want 2000-8000", cfg.Analysis.OvertonesLowHz, cfg.Analysis.OvertonesHighHz)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	body := `{"analysis": {"overtones_low_hz": 3000, "decimals": 1}, "workers": 4}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Analysis.OvertonesLowHz != 3000 {
		t.Errorf("overtones low = %g, want 3000", cfg.Analysis.OvertonesLowHz)
	}
	if cfg.Analysis.OvertonesHighHz != 8000 {
		t.Errorf("overtones high should keep default, got %g", cfg.Analysis.OvertonesHighHz)
	}
	if cfg.Analysis.Decimals != 1 || cfg.Workers != 4 {
		t.Errorf("decimals=%d workers=%d", cfg.Analysis.Decimals, cfg.Workers)
	}
}

func TestLoadFileTimeout(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    time.Duration
		wantErr bool
	}{
		{"duration string", `{"decoder": {"timeout": "45s"}}`, 45 * time.Second, false},
		{"nanoseconds", `{"decoder": {"timeout": 2000000000}}`, 2 * time.Second, false},
		{"absent keeps default", `{"decoder": {"ffmpeg_path": "/opt/ffmpeg"}}`, 30 * time.Second, false},
		{"bad duration", `{"decoder": {"timeout": "soon"}}`, 0, true},
		{"wrong type", `{"decoder": {"timeout": true}}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cfg.Decoder.Timeout != tt.want {
				t.Errorf("timeout = %v, want %v", cfg.Decoder.Timeout, tt.want)
			}
			if cfg.Decoder.FFprobePath != "ffprobe" {
				t.Errorf("ffprobe path lost its default: %q", cfg.Decoder.FFprobePath)
			}
		})
	}
}

func TestDecoderConfigJSONRoundTrip(t *testing.T) {
	in := DefaultConfig()
	in.Decoder.Timeout = 90 * time.Second
	in.Decoder.DisableFFmpeg = true

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"timeout":"1m30s"`) {
		t.Errorf("timeout not written as a duration string: %s", data)
	}

	out := DefaultConfig()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatal(err)
	}
	if out.Decoder != in.Decoder {
		t.Errorf("decoder = %+v, want %+v", out.Decoder, in.Decoder)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OVERTONE_OVERTONES_HIGH_HZ", "10000")
	t.Setenv("OVERTONE_PSD_METHOD", PSDPeriodogram)
	t.Setenv("OVERTONE_DECODE_TIMEOUT", "5s")
	t.Setenv("OVERTONE_DISABLE_FFMPEG", "true")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Analysis.OvertonesHighHz != 10000 {
		t.Errorf("overtones high = %g", cfg.Analysis.OvertonesHighHz)
	}
	if cfg.Analysis.PSDMethod != PSDPeriodogram {
		t.Errorf("psd method = %q", cfg.Analysis.PSDMethod)
	}
	if cfg.Decoder.Timeout != 5*time.Second || !cfg.Decoder.DisableFFmpeg {
		t.Errorf("decoder = %+v", cfg.Decoder)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("OVERTONE_DECIMALS", "two")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Fatal("expected error for non-numeric OVERTONE_DECIMALS")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("OVERTONE_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("OVERTONE_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("OVERTONE_TEST_DOTENV"); got != "loaded" {
		t.Errorf("OVERTONE_TEST_DOTENV = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted overtones", func(c *Config) { c.Analysis.OvertonesLowHz = 9000 }},
		{"negative cutoff", func(c *Config) { c.Analysis.LowCutoffHz = -1 }},
		{"bad method", func(c *Config) { c.Analysis.PSDMethod = "multitaper" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero timeout", func(c *Config) { c.Decoder.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
