// Package compose concatenates word-processing documents.
//
// The merge itself is delegated to a composition Library: the first document
// is opened as the base, every following document is appended to it in
// order, and the base is written to the destination.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoFiles is returned when there is nothing to combine.
	ErrNoFiles = errors.New("no files to combine")
	// ErrNoDestination is returned when no output path was chosen.
	ErrNoDestination = errors.New("no destination chosen")
)

// Document is an opened document that can absorb the content of another one
// and serialize itself.
type Document interface {
	Append(other Document) error
	io.WriterTo
}

// Library opens documents for composition.
type Library interface {
	Open(path string) (Document, error)
}

// Pipeline merges an ordered list of documents into one output file.
type Pipeline struct {
	lib    Library
	logger *zap.Logger
}

// NewPipeline returns a pipeline backed by lib. A nil logger disables logging.
func NewPipeline(lib Library, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{lib: lib, logger: logger}
}

// Combine writes to dest the content of paths[0] followed by the content of
// each later path, in order. Sources are never modified. On error no file is
// left at dest.
func (p *Pipeline) Combine(ctx context.Context, paths []string, dest string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}
	if dest == "" {
		return ErrNoDestination
	}

	start := time.Now()
	p.logger.Info("Combining documents", zap.Int("files", len(paths)), zap.String("dest", dest))

	base, err := p.lib.Open(paths[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", paths[0], err)
	}

	for _, path := range paths[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := p.lib.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		if err := base.Append(doc); err != nil {
			return fmt.Errorf("appending %s: %w", path, err)
		}
		p.logger.Debug("Appended document", zap.String("path", path))
	}

	if err := save(base, dest); err != nil {
		p.logger.Error("Failed to save combined document", zap.String("dest", dest), zap.Error(err))
		return fmt.Errorf("saving %s: %w", dest, err)
	}

	p.logger.Info("Combined documents", zap.String("dest", dest), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// save writes doc next to dest under a temporary name and renames it into
// place once complete.
func save(doc io.WriterTo, dest string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = doc.WriteTo(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
