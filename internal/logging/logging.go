package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Options selects how the application logger is built.
type Options struct {
	Debug      bool
	AppName    string
	AppVersion string
	// File receives the log instead of stderr when set. The TUI owns the
	// terminal, so it always logs to a file.
	File string
}

// Setup builds the application logger and installs it as the zap global.
// On failure a no-op logger is returned together with the error so callers
// can keep going.
func Setup(opts Options) (*zap.Logger, error) {
	var cfg zap.Config

	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	// Add default fields
	cfg.InitialFields = map[string]interface{}{
		"appName":    opts.AppName,
		"appVersion": opts.AppVersion,
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zap.NewNop(), err
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}

// DefaultFile returns the log location used by the TUI when none is configured.
func DefaultFile(appName string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName, appName+".log")
}
