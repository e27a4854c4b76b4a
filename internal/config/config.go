package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/convertra/pdf2sheet/internal/ocr"
	"github.com/convertra/pdf2sheet/internal/pipeline"
)

const (
	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOCRDPI      = 300

	// MinOCRDPI and MaxOCRDPI bound the DPI hint handed to the OCR
	// engine; values outside this range make tesseract misjudge glyph
	// sizes badly enough to be worth rejecting up front.
	MinOCRDPI = 70
	MaxOCRDPI = 2400
)

// Config holds all configuration for the pdf2sheet converter.
type Config struct {
	// Input/output
	InputPath  string
	OutputPath string

	// Extraction tuning
	MinTextThreshold  int
	MinYieldThreshold int
	MinLineLength     int

	// OCR configuration
	OCRDPI       int
	OCRConfigs   []string
	OCRLanguages []string

	// Application configuration
	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	settings := pipeline.DefaultSettings()

	return &Config{
		MinTextThreshold:  settings.MinTextThreshold,
		MinYieldThreshold: settings.MinYieldThreshold,
		MinLineLength:     settings.MinLineLength,
		OCRDPI:            settings.OCRDPI,
		OCRConfigs:        settings.OCRConfigs,
		OCRLanguages:      settings.OCRLanguages,
		Version:           "1.0.0",
		LogLevel:          DefaultLogLevel,
		MaxFileSize:       DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
// The input PDF path is the single positional argument.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	args := pflag.Args()
	if len(args) != 1 {
		return nil, errors.New("expected exactly one input PDF path")
	}
	cfg.InputPath = args[0]

	if expandedPath, err := filepath.Abs(cfg.InputPath); err == nil {
		cfg.InputPath = expandedPath
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = defaultOutputPath(cfg.InputPath)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultOutputPath derives the workbook path from the input: same
// directory, same base name, .xlsx extension.
func defaultOutputPath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + ".xlsx"
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDF2SHEET")
	viper.AutomaticEnv()

	viper.SetDefault("out", cfg.OutputPath)
	viper.SetDefault("min-text-threshold", cfg.MinTextThreshold)
	viper.SetDefault("min-yield-threshold", cfg.MinYieldThreshold)
	viper.SetDefault("ocr-dpi", cfg.OCRDPI)
	viper.SetDefault("ocr-configs", cfg.OCRConfigs)
	viper.SetDefault("lang", cfg.OCRLanguages)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("out", cfg.OutputPath, "Output .xlsx path (default: input path with .xlsx extension)")
	pflag.Int("min-text-threshold", cfg.MinTextThreshold, "Minimum text-layer characters for a page to count as text-bearing")
	pflag.Int("min-yield-threshold", cfg.MinYieldThreshold, "Minimum accepted characters before falling back to OCR")
	pflag.Int("ocr-dpi", cfg.OCRDPI, "DPI hint passed to the OCR engine")
	pflag.StringSlice("ocr-configs", cfg.OCRConfigs, "OCR recognition configs to try, in order (e.g. psm6,psm3)")
	pflag.StringSlice("lang", cfg.OCRLanguages, "OCR languages (tesseract language codes)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("min-text-threshold", pflag.Lookup("min-text-threshold"))
	_ = viper.BindPFlag("min-yield-threshold", pflag.Lookup("min-yield-threshold"))
	_ = viper.BindPFlag("ocr-dpi", pflag.Lookup("ocr-dpi"))
	_ = viper.BindPFlag("ocr-configs", pflag.Lookup("ocr-configs"))
	_ = viper.BindPFlag("lang", pflag.Lookup("lang"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\npdf2sheet - Convert PDF documents to Excel workbooks\n\n")
		fmt.Fprintf(os.Stderr, "  %s [options] <input.pdf>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s report.pdf                       # writes report.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --out=/tmp/out.xlsx scan.pdf     # custom output path\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --lang=eng,deu scan.pdf          # multilingual OCR\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF2SHEET_OUT           Output path\n")
		fmt.Fprintf(os.Stderr, "  PDF2SHEET_OCR_DPI       OCR DPI hint\n")
		fmt.Fprintf(os.Stderr, "  PDF2SHEET_LANG          OCR languages\n")
		fmt.Fprintf(os.Stderr, "  PDF2SHEET_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF2SHEET_MAXFILESIZE   Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.OutputPath = viper.GetString("out")
	cfg.MinTextThreshold = viper.GetInt("min-text-threshold")
	cfg.MinYieldThreshold = viper.GetInt("min-yield-threshold")
	cfg.OCRDPI = viper.GetInt("ocr-dpi")
	cfg.OCRConfigs = viper.GetStringSlice("ocr-configs")
	cfg.OCRLanguages = viper.GetStringSlice("lang")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MinTextThreshold < 0 {
		return errors.New("minimum text threshold cannot be negative")
	}
	if c.MinYieldThreshold < 0 {
		return errors.New("minimum yield threshold cannot be negative")
	}
	if c.MinYieldThreshold > c.MinTextThreshold {
		return errors.New("minimum yield threshold cannot exceed the text threshold")
	}

	if c.OCRDPI < MinOCRDPI || c.OCRDPI > MaxOCRDPI {
		return fmt.Errorf("OCR DPI must be between %d and %d", MinOCRDPI, MaxOCRDPI)
	}
	if _, err := ocr.ParseConfigs(c.OCRConfigs); err != nil {
		return fmt.Errorf("invalid OCR configs: %w", err)
	}
	if len(c.OCRLanguages) == 0 {
		return errors.New("at least one OCR language is required")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Settings converts the configuration into the pipeline's settings surface.
func (c *Config) Settings() pipeline.Settings {
	return pipeline.Settings{
		OCRDPI:            c.OCRDPI,
		OCRConfigs:        c.OCRConfigs,
		OCRLanguages:      c.OCRLanguages,
		MinTextThreshold:  c.MinTextThreshold,
		MinYieldThreshold: c.MinYieldThreshold,
		MinLineLength:     c.MinLineLength,
	}
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Input: %s, Output: %s, OCRDPI: %d, LogLevel: %s, MaxFileSize: %d}",
		c.InputPath, c.OutputPath, c.OCRDPI, c.LogLevel, c.MaxFileSize)
}
