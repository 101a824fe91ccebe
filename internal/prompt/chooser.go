package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oukeidos/dbyview/internal/resolver"
)

// Terminal asks for paths on a line-oriented terminal. An empty answer or
// end of input cancels; an answer that does not name a usable path is
// reported and asked again.
type Terminal struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
	HomeDir       func() (string, error)
}

func DefaultTerminal() *Terminal {
	return &Terminal{
		In:            os.Stdin,
		Out:           os.Stderr,
		IsInteractive: StdinIsInteractive,
		HomeDir:       os.UserHomeDir,
	}
}

func (t *Terminal) ChooseFile(title string, filters []resolver.Filter) (string, error) {
	return t.ask(title, describeFilters(filters), func(path string) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return nil
	})
}

func (t *Terminal) ChooseDirectory(title string) (string, error) {
	return t.ask(title, "", func(path string) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		return nil
	})
}

// ReadLine prints label and returns the next input line without its newline.
func (t *Terminal) ReadLine(label string) (string, error) {
	if t.Out != nil && label != "" {
		fmt.Fprint(t.Out, label)
	}
	return readLine(t.In)
}

func (t *Terminal) ask(title, hint string, check func(string) error) (string, error) {
	if t.IsInteractive == nil || !t.IsInteractive() {
		return "", fmt.Errorf("non-interactive stdin: set the path with 'dbyview config set'")
	}
	t.printf("%s\n", title)
	if hint != "" {
		t.printf("  %s\n", hint)
	}
	for {
		line, err := t.ReadLine("Path (empty to cancel): ")
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		answer := cleanAnswer(line)
		if answer == "" {
			return "", resolver.ErrCancelled
		}
		path, perr := t.expand(answer)
		if perr == nil {
			perr = check(path)
		}
		if perr == nil {
			return path, nil
		}
		t.printf("  %v\n", perr)
		if errors.Is(err, io.EOF) {
			return "", resolver.ErrCancelled
		}
	}
}

func (t *Terminal) expand(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home := t.HomeDir
		if home == nil {
			home = os.UserHomeDir
		}
		dir, err := home()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~: %w", err)
		}
		p = filepath.Join(dir, p[1:])
	}
	return filepath.Abs(p)
}

func (t *Terminal) printf(format string, args ...any) {
	if t.Out != nil {
		fmt.Fprintf(t.Out, format, args...)
	}
}

// cleanAnswer trims whitespace and one pair of surrounding quotes, which
// terminals add when a path is dropped onto the window.
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func describeFilters(filters []resolver.Filter) string {
	var parts []string
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Description, strings.Join(f.Patterns, " ")))
	}
	return strings.Join(parts, ", ")
}
