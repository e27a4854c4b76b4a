package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/convertra/pdf2sheet/internal/config"
	"github.com/convertra/pdf2sheet/internal/ocr"
	"github.com/convertra/pdf2sheet/internal/output"
	"github.com/convertra/pdf2sheet/internal/pdf"
	"github.com/convertra/pdf2sheet/internal/pipeline"
	"github.com/convertra/pdf2sheet/internal/xlsx"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures the logger from the loaded configuration.
func setupLogging(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// signalContext returns a context canceled on SIGINT/SIGTERM/SIGHUP.
// Cancellation takes effect at the next page boundary.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-signalCh
		cancel()
	}()

	return ctx, cancel
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	log := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() {
		log.Debugf("starting with configuration: %s", cfg.String())
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("conversion failed")
		os.Exit(1)
	}
}

// run wires the pipeline together and executes one conversion.
func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	settings := cfg.Settings()

	validator := pdf.NewValidator(cfg.MaxFileSize)
	reader := pdf.NewReader(cfg.MaxFileSize)
	engine := ocr.New(settings.OCRLanguages, settings.OCRDPI)
	images := pdf.NewImages()

	if stats, err := pdf.NewStats(cfg.MaxFileSize).GetFileStats(cfg.InputPath); err == nil {
		log.WithFields(logrus.Fields{
			"pages":  stats.Pages,
			"size":   stats.Size,
			"images": stats.ImageCount,
			"title":  stats.Title,
		}).Info("input document")
	}

	ocrExtractor, err := pipeline.NewOCRExtractor(settings, engine, images, log)
	if err != nil {
		return err
	}

	orchestrator := pipeline.NewOrchestrator(validator, reader, ocrExtractor, settings, log)

	agg, err := orchestrator.Run(ctx, cfg.InputPath)
	if err != nil && !errors.Is(err, pipeline.ErrNoContentExtracted) {
		return err
	}

	model := output.Assemble(agg)
	if werr := xlsx.NewWriter(log).Write(model, cfg.OutputPath); werr != nil {
		return werr
	}

	printSummary(cfg.OutputPath, model)
	return err
}

// printSummary writes a human-readable conversion report to stdout.
func printSummary(outPath string, model *output.Model) {
	fmt.Printf("Converted %s\n", model.Source)
	fmt.Printf("  Output:     %s\n", outPath)
	fmt.Printf("  Pages:      %d (mode: %s)\n", model.PageCount, model.Mode)
	fmt.Printf("  Characters: %d\n", model.TotalCharacters)
	fmt.Printf("  Tables:     %d\n", model.TotalTables)
	if len(model.PagesNeedingOCR) > 0 {
		fmt.Printf("  OCR pages:  %v\n", model.PagesNeedingOCR)
	}
	if len(model.FailedPages) > 0 {
		fmt.Printf("  Failed:     %v\n", model.FailedPages)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("pdf2sheet\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
