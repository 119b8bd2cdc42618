// Package preview extracts readable text from a .docx for display next to
// the merge list.
package preview

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	paraEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>`)
	tab     = regexp.MustCompile(`<w:tab\s*/>`)
	tags    = regexp.MustCompile(`<[^>]*>`)
)

// Text returns up to maxLines non-empty paragraphs of the document at path.
// maxLines <= 0 means no limit.
func Text(path string, maxLines int) ([]string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX file: %w", err)
	}
	defer r.Close()

	return Paragraphs(r.Editable().GetContent(), maxLines), nil
}

// Paragraphs converts WordprocessingML body XML to plain text lines.
func Paragraphs(xml string, maxLines int) []string {
	xml = tab.ReplaceAllString(xml, "\t")
	var lines []string
	for _, chunk := range paraEnd.Split(xml, -1) {
		line := strings.TrimSpace(html.UnescapeString(tags.ReplaceAllString(chunk, "")))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) == maxLines {
			break
		}
	}
	return lines
}
