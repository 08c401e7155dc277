// Package droppath turns the text a terminal inserts on drag-and-drop into
// file paths. Terminals paste dropped files as shell-quoted paths separated
// by spaces or newlines (iTerm2, Terminal.app, kitty, Windows Terminal) or
// as file:// URIs (GNOME Terminal, Konsole).
package droppath

import (
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Parse splits pasted text into paths using the escaping rules of the host OS
func Parse(s string) []string {
	return ParseWith(s, runtime.GOOS != "windows")
}

// ParseWith splits pasted text into paths. When backslashEscapes is true a
// backslash outside single quotes escapes the next character (POSIX shells);
// otherwise it is kept literally (Windows paths).
func ParseWith(s string, backslashEscapes bool) []string {
	var (
		paths   []string
		cur     strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)

	flush := func() {
		if inToken {
			if p := normalize(cur.String()); p != "" {
				paths = append(paths, p)
			}
		}
		cur.Reset()
		inToken = false
	}

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false

		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}

		case quote == '"':
			switch {
			case r == '"':
				quote = 0
			case r == '\\' && backslashEscapes:
				escaped = true
			default:
				cur.WriteRune(r)
			}

		case r == '\\' && backslashEscapes:
			inToken = true
			escaped = true

		case r == '\'' || r == '"':
			inToken = true
			quote = r

		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()

		default:
			inToken = true
			cur.WriteRune(r)
		}
	}
	flush()

	return paths
}

// normalize converts file:// URIs to paths and expands a leading ~
func normalize(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}

	if strings.HasPrefix(token, "file://") {
		u, err := url.Parse(token)
		if err == nil {
			p := u.Path
			// file:///C:/Users/... on Windows
			if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
				p = p[1:]
			}
			token = filepath.FromSlash(p)
		}
	}

	if token == "~" || strings.HasPrefix(token, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			token = filepath.Join(home, strings.TrimPrefix(token, "~"))
		}
	}

	return token
}
