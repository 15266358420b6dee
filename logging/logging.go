// Package logging builds the process-wide structured logger (spec C13),
// mirroring the teacher pack's NewLogger helpers: one logrus instance
// constructed at startup, JSON-formatted, with request-scoped fields
// attached per call site rather than through global state.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config controls where and how verbosely the logger writes.
type Config struct {
	Level     string // logrus level name; defaults to "info"
	Directory string // if set, logs are written to Directory/FileName
	FileName  string
}

// New builds a *logrus.Logger per cfg. A missing/unparseable Level falls
// back to info; a missing Directory falls back to stdout.
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	out, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	log.SetOutput(out)
	return log, nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Directory == "" || cfg.FileName == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(cfg.Directory, cfg.FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ForRequest returns a child entry carrying the per-request fields (spec
// C13): request id, platform id, stage. The router and the orchestrator do
// not call it; they attach their fields with their own WithField(s) calls.
func ForRequest(log *logrus.Logger, requestID string, platformID int64, stage string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"platform_id": platformID,
		"stage":       stage,
	})
}
