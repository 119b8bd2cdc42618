package model

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// escapeChar is the backslash on systems where it cannot be a path separator.
var escapeChar = func() rune {
	if filepath.Separator == '\\' {
		return 0
	}
	return '\\'
}()

// ExpandTilde expands ~ to the user's home directory
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// ParseDropPayload splits the text a terminal or window system delivers when
// files are dropped on it into individual paths, in payload order.
//
// Understood forms, which may be mixed and separated by any whitespace:
//
//	/plain/path.docx
//	/escaped\ space.docx          (macOS Terminal, iTerm2)
//	'/single quoted.docx'         (GNOME Terminal, Konsole)
//	"/double quoted.docx"
//	{/braced path.docx}           (Tk drop lists)
//	file:///percent%20encoded.docx
//
// Nothing is validated here; filtering is the selection's job.
func ParseDropPayload(payload string) []string {
	var (
		paths []string
		cur   strings.Builder
		inTok bool
		quote rune
	)

	flush := func() {
		if inTok && cur.Len() > 0 {
			paths = append(paths, normalizeDropped(cur.String()))
		}
		cur.Reset()
		inTok = false
	}

	runes := []rune(payload)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			closing := quote
			if quote == '{' {
				closing = '}'
			}
			if r == closing {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case escapeChar != 0 && r == escapeChar && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
			inTok = true
		case r == '\'' || r == '"' || (r == '{' && !inTok):
			quote = r
			inTok = true
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	flush()

	return paths
}

// normalizeDropped turns one dropped token into a filesystem path.
func normalizeDropped(token string) string {
	if strings.HasPrefix(token, "file://") {
		if u, err := url.Parse(token); err == nil && u.Path != "" {
			token = u.Path
			// file:///C:/x parses to /C:/x
			if len(token) > 2 && token[0] == '/' && token[2] == ':' {
				token = token[1:]
			}
		}
	}
	token = ExpandTilde(token)
	return filepath.Clean(token)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
