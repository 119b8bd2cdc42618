// Package app is the session controller shared by the terminal and browser
// front ends. It owns the selection and the last combined output, runs the
// combine and convert actions one at a time, and turns their outcomes into
// notices.
package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"docmerge/internal/convert"
	"docmerge/internal/model"
	"docmerge/internal/selection"
)

var (
	// ErrNoCombinedOutput means convert was requested before any successful
	// combine in this session.
	ErrNoCombinedOutput = errors.New("no combined document in this session")
	// ErrConversionDisabled is returned by variants without PDF conversion.
	ErrConversionDisabled = errors.New("conversion is not offered by this variant")
)

// Combiner merges documents in order into dest.
type Combiner interface {
	Combine(ctx context.Context, paths []string, dest string) error
}

// Converter produces a fixed-layout copy of a document.
type Converter interface {
	Available() error
	Convert(ctx context.Context, source string, choose convert.DestChooser) (string, error)
}

// Session is the state of one window.
type Session struct {
	// action serialises Combine and Convert; mu guards the fields below.
	action sync.Mutex
	mu     sync.Mutex

	files    *selection.List
	combined string // empty until a combine succeeds

	combiner  Combiner
	converter Converter
	logger    *zap.Logger
}

// NewSession returns an empty session. converter may be nil for a variant
// without conversion.
func NewSession(combiner Combiner, converter Converter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		files:     selection.New(),
		combiner:  combiner,
		converter: converter,
		logger:    logger,
	}
}

// Files returns the queued documents in merge order.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Paths()
}

// Drop adds the files named in a drop payload and reports how many were
// accepted. Unsupported and duplicate paths are skipped silently.
func (s *Session) Drop(payload string) int {
	return s.DropPaths(model.ParseDropPayload(payload))
}

// DropPaths is Drop for already separated paths.
func (s *Session) DropPaths(paths []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.files.AddAll(paths)
	s.logger.Debug("Files dropped", zap.Int("offered", len(paths)), zap.Int("accepted", n))
	return n
}

// Remove deletes the entry at index; an invalid index is a no-op.
func (s *Session) Remove(index int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Remove(index)
}

// Move reorders one entry.
func (s *Session) Move(from, to int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Move(from, to)
}

// Clear removes every entry.
func (s *Session) Clear() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Clear()
}

// Reset starts a new session: no files and no combined output.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files.Clear()
	s.combined = ""
}

// LastCombined returns the output of the most recent successful combine.
func (s *Session) LastCombined() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combined, s.combined != ""
}

// ConversionOffered reports whether this variant has a convert action.
func (s *Session) ConversionOffered() bool {
	return s.converter != nil
}

// CheckCombine validates a combine before asking for a destination.
func (s *Session) CheckCombine() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files.Len() == 0 {
		return noticeNoFiles, false
	}
	return Notice{}, true
}

// Combine merges the queued files into dest, adding the .docx extension when
// missing, and records dest as the session's combined output on success.
func (s *Session) Combine(ctx context.Context, dest string) Notice {
	s.action.Lock()
	defer s.action.Unlock()

	files := s.Files()
	dest = model.EnsureExt(dest, model.DocumentExt)
	if len(files) > 0 && dest == "" {
		return noticeNoDestination
	}

	if err := s.combiner.Combine(ctx, files, dest); err != nil {
		s.logger.Warn("Combine failed", zap.String("dest", dest), zap.Error(err))
		return combineNotice(err)
	}

	s.mu.Lock()
	s.combined = dest
	s.mu.Unlock()
	return info("Success", "Combined file saved to:\n%s", dest)
}

// CheckConvert validates a convert request in the order a user should learn
// about problems: missing capability first, then the missing combined file.
func (s *Session) CheckConvert() (Notice, bool) {
	if err := s.checkConvert(); err != nil {
		return convertNotice(err), false
	}
	return Notice{}, true
}

func (s *Session) checkConvert() error {
	if s.converter == nil {
		return ErrConversionDisabled
	}
	if err := s.converter.Available(); err != nil {
		return err
	}
	if _, ok := s.LastCombined(); !ok {
		return ErrNoCombinedOutput
	}
	return nil
}

// Convert writes a PDF of the last combined document where choose says.
// Canceling the destination prompt returns ok == false and no notice.
func (s *Session) Convert(ctx context.Context, choose convert.DestChooser) (n Notice, ok bool) {
	s.action.Lock()
	defer s.action.Unlock()

	if err := s.checkConvert(); err != nil {
		return convertNotice(err), true
	}
	source, _ := s.LastCombined()

	withExt := func(suggested string) (string, bool) {
		dest, ok := choose(suggested)
		return model.EnsureExt(dest, model.FixedLayoutExt), ok
	}

	dest, err := s.converter.Convert(ctx, source, withExt)
	switch {
	case errors.Is(err, convert.ErrCanceled):
		return Notice{}, false
	case err != nil:
		s.logger.Warn("Convert failed", zap.String("source", source), zap.Error(err))
		return convertNotice(err), true
	}
	return info("Success", "PDF saved to:\n%s", dest), true
}
