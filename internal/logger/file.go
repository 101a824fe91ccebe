package logger

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileName returns the daily log file path inside dir, for example
// logs/2026.10.17_0.6.0_alice.log. One file per day, version and user.
func FileName(dir, version, user string, now time.Time) string {
	name := now.Format("2006.01.02")
	if v := sanitize(version); v != "" {
		name += "_" + v
	}
	if u := sanitize(user); u != "" {
		name += "_" + u
	}
	return filepath.Join(dir, fmt.Sprintf("%s.log", name))
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, s)
}
