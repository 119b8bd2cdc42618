// Package convert produces fixed-layout (PDF) copies of documents by driving
// an installed office suite.
//
// An automation session is a scoped resource: Bridge.Convert starts the
// application, opens the document, and on every exit path closes the
// document and quits the application before returning.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Format is an office-automation save format code.
type Format int

// FormatPDF is the automation code for a PDF export (wdFormatPDF).
const FormatPDF Format = 17

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

var (
	// ErrAutomationUnavailable means no usable office suite is installed.
	ErrAutomationUnavailable = errors.New("office automation is not available")
	// ErrCanceled means the user dismissed the destination prompt.
	ErrCanceled = errors.New("conversion canceled")
	// ErrUnsupportedFormat is returned by backends for unknown save formats.
	ErrUnsupportedFormat = errors.New("unsupported save format")
)

// Automation is an office suite that can be started as a separate process.
type Automation interface {
	Name() string
	// Available returns nil when the suite can be started on this host.
	Available() error
	Start(ctx context.Context) (Application, error)
}

// Application is a running automation session.
type Application interface {
	Open(ctx context.Context, path string) (Document, error)
	Quit() error
}

// Document is a document opened inside an Application.
type Document interface {
	SaveAs(ctx context.Context, path string, format Format) error
	Close() error
}

// DestChooser asks the user where to save. suggested is a default the
// prompt may show. ok is false when the user cancels.
type DestChooser func(suggested string) (dest string, ok bool)

// Bridge converts documents through an Automation backend.
type Bridge struct {
	automation Automation
	logger     *zap.Logger
}

// NewBridge returns a bridge over automation. A nil logger disables logging.
func NewBridge(automation Automation, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{automation: automation, logger: logger}
}

// Available reports whether conversion can run at all. It is checked before
// anything else so a missing suite never leads to a prompt.
func (b *Bridge) Available() error {
	if b.automation == nil {
		return ErrAutomationUnavailable
	}
	if err := b.automation.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrAutomationUnavailable, err)
	}
	return nil
}

// Convert opens source in the office suite, asks choose for a destination and
// saves a PDF there. It returns the destination written. When the user
// cancels, the document is still closed and the application quit, and
// ErrCanceled is returned.
func (b *Bridge) Convert(ctx context.Context, source string, choose DestChooser) (dest string, err error) {
	if err := b.Available(); err != nil {
		return "", err
	}

	start := time.Now()
	log := b.logger.With(zap.String("backend", b.automation.Name()), zap.String("source", source))
	log.Info("Starting office automation")

	app, err := b.automation.Start(ctx)
	if err != nil {
		return "", fmt.Errorf("starting %s: %w", b.automation.Name(), err)
	}
	defer func() {
		if qerr := app.Quit(); qerr != nil {
			log.Warn("Failed to quit office automation", zap.Error(qerr))
			err = errors.Join(err, fmt.Errorf("quitting %s: %w", b.automation.Name(), qerr))
		}
	}()

	doc, err := app.Open(ctx, source)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", source, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.Warn("Failed to close document", zap.Error(cerr))
			err = errors.Join(err, fmt.Errorf("closing %s: %w", source, cerr))
		}
	}()

	dest, ok := choose(suggestedDest(source))
	if !ok || dest == "" {
		log.Info("Conversion canceled")
		return "", ErrCanceled
	}

	if err := doc.SaveAs(ctx, dest, FormatPDF); err != nil {
		log.Error("Failed to save fixed-layout copy", zap.String("dest", dest), zap.Error(err))
		return "", fmt.Errorf("saving %s: %w", dest, err)
	}

	log.Info("Converted document", zap.String("dest", dest), zap.Duration("elapsed", time.Since(start)))
	return dest, nil
}
