package model

import (
	"path/filepath"
	"strings"
)

// Suffixes of the files docmerge reads and writes. Matching is case-sensitive,
// so "REPORT.DOCX" is not picked up from a drop.
const (
	DocumentExt    = ".docx"
	FixedLayoutExt = ".pdf"
)

// DefaultCombinedName is offered in the save-as prompt after a combine.
const DefaultCombinedName = "combined" + DocumentExt

// IsDocument reports whether path names a word-processing document.
// Only the suffix is checked; the file may not even exist yet.
func IsDocument(path string) bool {
	return strings.HasSuffix(path, DocumentExt)
}

// WithExt returns path with its extension replaced by ext.
// A path without an extension just gets ext appended.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// EnsureExt appends ext when path does not already end with it, the way a
// native save dialog applies its default extension.
func EnsureExt(path, ext string) string {
	if path == "" || strings.HasSuffix(path, ext) {
		return path
	}
	return path + ext
}

// DisplayName returns the label shown for a file entry in a list.
func DisplayName(path string) string {
	return filepath.Base(path)
}
