package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convertra/pdf2sheet/internal/pipeline"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 50, cfg.MinTextThreshold)
	assert.Equal(t, 1, cfg.MinYieldThreshold)
	assert.Equal(t, DefaultOCRDPI, cfg.OCRDPI)
	assert.Equal(t, []string{"psm6", "psm3", "psm4"}, cfg.OCRConfigs)
	assert.Equal(t, []string{"eng"}, cfg.OCRLanguages)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "negative text threshold",
			mutate: func(c *Config) { c.MinTextThreshold = -1 },
			errMsg: "text threshold",
		},
		{
			name:   "yield threshold above text threshold",
			mutate: func(c *Config) { c.MinYieldThreshold = 60 },
			errMsg: "yield threshold",
		},
		{
			name:   "dpi too low",
			mutate: func(c *Config) { c.OCRDPI = 10 },
			errMsg: "DPI",
		},
		{
			name:   "dpi too high",
			mutate: func(c *Config) { c.OCRDPI = 10000 },
			errMsg: "DPI",
		},
		{
			name:   "invalid ocr config",
			mutate: func(c *Config) { c.OCRConfigs = []string{"psm99"} },
			errMsg: "OCR configs",
		},
		{
			name:   "no languages",
			mutate: func(c *Config) { c.OCRLanguages = nil },
			errMsg: "language",
		},
		{
			name:   "zero max file size",
			mutate: func(c *Config) { c.MaxFileSize = 0 },
			errMsg: "file size",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.LogLevel = "verbose" },
			errMsg: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Settings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCRDPI = 150
	cfg.OCRLanguages = []string{"eng", "deu"}
	cfg.MinTextThreshold = 30

	want := pipeline.Settings{
		OCRDPI:            150,
		OCRConfigs:        []string{"psm6", "psm3", "psm4"},
		OCRLanguages:      []string{"eng", "deu"},
		MinTextThreshold:  30,
		MinYieldThreshold: 1,
		MinLineLength:     2,
	}
	assert.Equal(t, want, cfg.Settings())
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/docs/report.pdf", "/docs/report.xlsx"},
		{"/docs/report.PDF", "/docs/report.xlsx"},
		{"scan.pdf", "scan.xlsx"},
		{"archive.tar.pdf", "archive.tar.xlsx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultOutputPath(tt.input), "input %q", tt.input)
	}
}
