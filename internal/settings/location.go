package settings

import (
	"path/filepath"
	"strings"
)

const fileExt = ".toml"

// Location derives the settings file path from explicit identity values.
// Program is usually ProgramName(os.Args[0]); User is only used when PerUser
// is set, which gives every OS user a separate file next to the others.
type Location struct {
	Dir     string
	Program string
	User    string
	PerUser bool
}

// ProgramName returns the binary base name without its extension, so that
// "C:\tools\dbyview-dev.exe" and "./dbyview-dev" both yield "dbyview-dev".
func ProgramName(arg0 string) string {
	base := filepath.Base(strings.ReplaceAll(arg0, `\`, "/"))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == "/" {
		return "dbyview"
	}
	return name
}

func (l Location) FileName() string {
	program := sanitizeIdentity(l.Program)
	if program == "" {
		program = "dbyview"
	}
	if l.PerUser {
		if user := sanitizeIdentity(l.User); user != "" {
			return program + "_" + user + fileExt
		}
	}
	return program + fileExt
}

func (l Location) Path() string {
	return filepath.Join(l.Dir, l.FileName())
}

func sanitizeIdentity(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
