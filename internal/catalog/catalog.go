// Package catalog builds the list of files a user can open: a recursive scan
// of one directory for a single extension, kept as an immutable snapshot.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/logger"
)

const DefaultExtension = ".dby"

// Entry is one matched file. Name is the base name without the extension.
type Entry struct {
	Name string
	Path string
}

// Catalog is an ordered snapshot. It is never modified after Scan returns.
type Catalog struct {
	root       string
	generation uint64
	entries    []Entry
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *Catalog) Root() string {
	if c == nil {
		return ""
	}
	return c.root
}

// Generation identifies the scan that produced c inside a Library.
func (c *Catalog) Generation() uint64 {
	if c == nil {
		return 0
	}
	return c.generation
}

// Entries returns a copy of the entries in discovery order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// At returns the entry at index or a StaleSelection error when out of range.
func (c *Catalog) At(index int) (Entry, error) {
	if index < 0 || index >= c.Len() {
		return Entry{}, apperrors.StaleSelection(index, c.Len())
	}
	return c.entries[index], nil
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimPrefix(ext, "*")
	if ext == "" || ext == "." {
		return "", fmt.Errorf("file extension is empty")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\`) {
		return "", fmt.Errorf("invalid file extension %q", ext)
	}
	return ext, nil
}

// Scan walks root depth-first in lexical order and collects every regular file
// whose name ends with ext, ignoring case. Unreadable subdirectories are
// skipped. A missing or non-directory root is an InvalidRoot error together
// with an empty catalog.
func Scan(root, ext string) (*Catalog, error) {
	empty := &Catalog{root: root}
	norm, err := NormalizeExtension(ext)
	if err != nil {
		return empty, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return empty, apperrors.InvalidRoot(root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		logger.Warn("Catalog root unavailable", "root", abs, "error", err)
		return empty, apperrors.InvalidRoot(abs, err)
	}
	if !info.IsDir() {
		logger.Warn("Catalog root is not a directory", "root", abs)
		return empty, apperrors.InvalidRoot(abs, fmt.Errorf("not a directory"))
	}

	// WalkDir does not descend into a symlinked root, so walk its target and
	// report paths under the configured root.
	walkRoot := abs
	if li, err := os.Lstat(abs); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			walkRoot = resolved
		}
	}

	start := time.Now()
	logger.Info("Catalog scan started", "root", abs, "ext", norm)

	var entries []Entry
	skipped := 0
	walkErr := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot {
				return err
			}
			skipped++
			logger.Debug("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if len(name) < len(norm) || !strings.EqualFold(name[len(name)-len(norm):], norm) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		if walkRoot != abs {
			if rel, err := filepath.Rel(walkRoot, path); err == nil {
				path = filepath.Join(abs, rel)
			}
		}
		entries = append(entries, Entry{
			Name: displayName(name, norm),
			Path: path,
		})
		return nil
	})
	if walkErr != nil {
		logger.Warn("Catalog root became unreadable", "root", abs, "error", walkErr)
		return &Catalog{root: abs}, apperrors.InvalidRoot(abs, walkErr)
	}

	logger.Info("Catalog scan finished", "root", abs, "entries", len(entries), "skipped", skipped, "elapsed", time.Since(start).Round(time.Millisecond))
	return &Catalog{root: abs, entries: entries}, nil
}

// displayName strips ext from name. A file named only ".dby" keeps its full
// name so it stays visible and selectable.
func displayName(name, ext string) string {
	if trimmed := name[:len(name)-len(ext)]; trimmed != "" {
		return trimmed
	}
	return name
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
