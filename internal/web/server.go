// Package web serves the merger as a local page so files can be dropped from
// the desktop file manager into a browser window.
package web

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docmerge/internal/app"
	"docmerge/internal/model"
)

//go:embed static/*
var staticFS embed.FS

//go:embed help.md
var helpMD string

// maxUpload bounds one multipart request.
const maxUpload = 256 << 20

// Server exposes a Session over HTTP. Dropped files are copied into a
// private directory that Close removes.
type Server struct {
	session *app.Session
	logger  *zap.Logger
	theme   string

	dir string // uploads and outputs

	mu      sync.Mutex
	upload  int               // sequence for upload subdirectories
	stored  map[string]string // upload key (name and content digest) to stored path
	lastPDF string
}

// New returns a server for session with a fresh working directory.
func New(session *app.Session, theme string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir, err := os.MkdirTemp("", "docmerge-web-")
	if err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Server{
		session: session,
		logger:  logger,
		theme:   theme,
		dir:     dir,
		stored:  make(map[string]string),
	}, nil
}

// Close removes every uploaded and produced file.
func (s *Server) Close() error {
	return os.RemoveAll(s.dir)
}

// Handler returns the routes of the page and its API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	subFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServer(http.FS(subFS)))

	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("POST /api/files", s.handleUpload)
	mux.HandleFunc("DELETE /api/files", s.handleRemove)
	mux.HandleFunc("POST /api/move", s.handleMove)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("POST /api/combine", s.handleCombine)
	mux.HandleFunc("POST /api/convert/check", s.handleConvertCheck)
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /api/download", s.handleDownload)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("GET /api/help", handleHelp)
	return mux
}

// Serve runs the server on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("Web server started", zap.String("addr", addr))
	fmt.Printf("Starting docmerge web server at http://localhost%s\n", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type fileEntry struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

type filesResponse struct {
	Files      []fileEntry `json:"files"`
	Combined   string      `json:"combined,omitempty"`
	Conversion bool        `json:"conversion"`
	Added      int         `json:"added"`
}

type actionResponse struct {
	Notice   *app.Notice `json:"notice,omitempty"`
	Download string      `json:"download,omitempty"`
}

func (s *Server) state(added int) filesResponse {
	resp := filesResponse{
		Files:      []fileEntry{},
		Conversion: s.session.ConversionOffered(),
		Added:      added,
	}
	for i, p := range s.session.Files() {
		resp.Files = append(resp.Files, fileEntry{Index: i, Name: model.DisplayName(p), Exists: model.FileExists(p)})
	}
	if last, ok := s.session.LastCombined(); ok {
		resp.Combined = model.DisplayName(last)
	}
	return resp
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state(0))
}

// handleUpload stores dropped files and queues the documents among them.
// Other files are discarded unread.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var paths []string
	for _, fh := range r.MultipartForm.File["files"] {
		name := filepath.Base(fh.Filename)
		if !model.IsDocument(name) {
			continue
		}
		path, err := s.store(fh, name)
		if err != nil {
			s.logger.Error("Storing upload failed", zap.String("name", name), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		paths = append(paths, path)
	}

	writeJSON(w, http.StatusOK, s.state(s.session.DropPaths(paths)))
}

// store copies one upload into its own subdirectory so equal names from
// different folders stay distinct entries. Dropping the same file again
// returns the path stored the first time, so the session sees a duplicate.
func (s *Server) store(fh *multipart.FileHeader, name string) (string, error) {
	in := filepath.Join(s.dir, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(in, ".upload-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	key := name + "\x00" + hex.EncodeToString(h.Sum(nil))

	s.mu.Lock()
	defer s.mu.Unlock()
	if path, ok := s.stored[key]; ok {
		return path, nil
	}

	s.upload++
	dir := filepath.Join(in, strconv.Itoa(s.upload))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", err
	}
	s.stored[key] = path
	return path, nil
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		http.Error(w, "index is required", http.StatusBadRequest)
		return
	}
	s.session.Remove(index)
	writeJSON(w, http.StatusOK, s.state(0))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.session.Move(req.From, req.To)
	writeJSON(w, http.StatusOK, s.state(0))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.session.Clear()
	writeJSON(w, http.StatusOK, s.state(0))
}

type nameRequest struct {
	Name string `json:"name"`
}

// outputPath places a client-chosen file name in the output directory.
// An empty name, or one that does not name a file (".", "..", "/"), means
// no destination.
func (s *Server) outputPath(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return ""
	}
	return filepath.Join(s.dir, "out", base)
}

func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if n, ok := s.session.CheckCombine(); !ok {
		writeJSON(w, http.StatusOK, actionResponse{Notice: &n})
		return
	}

	dest := s.outputPath(req.Name)
	if dest != "" {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	n := s.session.Combine(r.Context(), dest)
	resp := actionResponse{Notice: &n}
	if n.Level == app.LevelInfo {
		resp.Download = "/api/download?kind=docx"
		// The page shows a name, not a server path.
		if last, ok := s.session.LastCombined(); ok {
			n.Message = "Combined file saved as " + model.DisplayName(last)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleConvertCheck lets the page report a missing office suite or a
// missing combined file before it asks for a name.
func (s *Server) handleConvertCheck(w http.ResponseWriter, r *http.Request) {
	if n, ok := s.session.CheckConvert(); !ok {
		writeJSON(w, http.StatusOK, actionResponse{Notice: &n})
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	choose := func(suggested string) (string, bool) {
		dest := s.outputPath(req.Name)
		if dest == "" {
			return "", false
		}
		return dest, os.MkdirAll(filepath.Dir(dest), 0o755) == nil
	}

	n, shown := s.session.Convert(r.Context(), choose)
	if !shown {
		writeJSON(w, http.StatusOK, actionResponse{})
		return
	}
	resp := actionResponse{Notice: &n}
	if n.Level == app.LevelInfo {
		dest := model.EnsureExt(s.outputPath(req.Name), model.FixedLayoutExt)
		s.mu.Lock()
		s.lastPDF = dest
		s.mu.Unlock()
		n.Message = "PDF saved as " + model.DisplayName(dest)
		resp.Download = "/api/download?kind=pdf"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var path string
	switch r.URL.Query().Get("kind") {
	case "pdf":
		s.mu.Lock()
		path = s.lastPDF
		s.mu.Unlock()
	default:
		path, _ = s.session.LastCombined()
	}
	if path == "" || !model.FileExists(path) {
		http.Error(w, "nothing to download", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", model.DisplayName(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Version    string `json:"version"`
		Theme      string `json:"theme"`
		Conversion bool   `json:"conversion"`
		Default    string `json:"defaultName"`
	}{
		Version:    model.Version,
		Theme:      s.theme,
		Conversion: s.session.ConversionOffered(),
		Default:    model.DefaultCombinedName,
	})
}

func handleHelp(w http.ResponseWriter, r *http.Request) {
	text := strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)

	w.Header().Set("Content-Type", "text/markdown")
	w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
