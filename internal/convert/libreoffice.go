package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"docmerge/internal/model"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// sofficeNames are tried in order when no binary is configured.
var sofficeNames = []string{"soffice", "libreoffice"}

// LibreOffice drives a headless LibreOffice. Each session gets a private
// user profile so it never attaches to, or is blocked by, an instance the
// user already has open.
type LibreOffice struct {
	binary string
	exec   executor
}

// NewLibreOffice returns a backend using binary, or the first of soffice and
// libreoffice found on PATH when binary is empty.
func NewLibreOffice(binary string) *LibreOffice {
	return &LibreOffice{binary: binary, exec: osExecutor{}}
}

func (l *LibreOffice) Name() string { return "LibreOffice" }

func (l *LibreOffice) Available() error {
	_, err := l.resolve()
	return err
}

func (l *LibreOffice) resolve() (string, error) {
	names := sofficeNames
	if l.binary != "" {
		names = []string{l.binary}
	}
	for _, n := range names {
		if p, err := l.exec.LookPath(n); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s not found", strings.Join(names, " or "))
}

// Start creates the session profile directory. The suite itself runs once
// per SaveAs, in that profile.
func (l *LibreOffice) Start(ctx context.Context) (Application, error) {
	bin, err := l.resolve()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile, err := os.MkdirTemp("", "docmerge-lo-*")
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	return &officeApp{bin: bin, profile: profile, exec: l.exec}, nil
}

type officeApp struct {
	bin     string
	profile string
	exec    executor

	mu   sync.Mutex
	quit bool
}

func (a *officeApp) Open(ctx context.Context, path string) (Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.quit {
		return nil, errors.New("application has quit")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !model.FileExists(abs) {
		return nil, fmt.Errorf("%s: %w", abs, os.ErrNotExist)
	}
	return &officeDoc{app: a, path: abs}, nil
}

// Quit removes the session profile. Calling it more than once is harmless.
func (a *officeApp) Quit() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.quit {
		return nil
	}
	a.quit = true
	return os.RemoveAll(a.profile)
}

type officeDoc struct {
	app    *officeApp
	path   string
	closed bool
}

// SaveAs exports the document into a scratch directory and moves the result
// to dest, since the suite can only choose the output directory.
func (d *officeDoc) SaveAs(ctx context.Context, dest string, format Format) error {
	if d.closed {
		return errors.New("document is closed")
	}
	if format != FormatPDF {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	outDir, err := os.MkdirTemp("", "docmerge-out-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(outDir)

	args := []string{
		"--headless",
		"--norestore",
		"-env:UserInstallation=" + fileURL(d.app.profile),
		"--convert-to", format.String(),
		"--outdir", outDir,
		d.path,
	}
	if out, err := d.app.exec.Run(ctx, d.app.bin, args...); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(d.app.bin), err, strings.TrimSpace(string(out)))
	}

	produced := filepath.Join(outDir, model.WithExt(filepath.Base(d.path), "."+format.String()))
	if !model.FileExists(produced) {
		return fmt.Errorf("no output produced for %s", filepath.Base(d.path))
	}
	return moveFile(produced, dest)
}

func (d *officeDoc) Close() error {
	d.closed = true
	return nil
}

// fileURL renders dir as a file:// URL the suite accepts on every platform.
func fileURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

func suggestedDest(source string) string {
	return model.WithExt(source, model.FixedLayoutExt)
}
