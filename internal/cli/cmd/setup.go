package cmd

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/inkyslide/internal/config"
	"github.com/matjam/inkyslide/internal/display"
	"github.com/spf13/viper"
)

func loadConfig() config.Config {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return cfg
}

// rotatingWriter returns a daily rotated file named after the command in
// logDir.
func rotatingWriter(logDir, name string) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(logDir, name+".log")
	return rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
}

// setupRotatingLogger sends the log to <logDir>/<name>.log, and to stderr as
// well unless the process runs in the background.
func setupRotatingLogger(logDir, name string, background bool, debug bool) {
	writer, err := rotatingWriter(logDir, name)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	if background {
		log.SetOutput(writer)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, writer))
	}
	log.SetReportTimestamp(true)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// openPanel tries the configured drivers and falls back to the no-op panel.
func openPanel(cfg config.Config, logger *log.Logger) display.Panel {
	candidates, err := display.Candidates(cfg.Drivers)
	if err != nil {
		logger.Fatalf("Invalid drivers setting: %v", err)
	}

	panel := display.Detect(logger, candidates, display.NewNull(cfg.Width, cfg.Height))
	if cfg.PreviewPath != "" {
		logger.Info("Saving a preview of every frame", "path", cfg.PreviewPath)
		return display.NewPreview(panel, cfg.PreviewPath, logger)
	}
	return panel
}
