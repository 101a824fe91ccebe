// Package settings is the durable sectioned key/value store behind dbyview.
//
// The backing file is TOML: every top-level table is a section and every
// scalar inside it is a string value. Each Set persists the whole store before
// returning, so there is no separate flush step.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/files"
	"github.com/oukeidos/dbyview/internal/logger"
)

const (
	SectionSettings = "Settings"
	SectionWindow   = "WindowSize"

	KeyExecutablePath = "executable_path"
	KeyFolderPath     = "folder_path"
	KeyWidth          = "width"
	KeyHeight         = "height"
)

const filePerms = 0600

type Store struct {
	mu       sync.Mutex
	path     string
	created  bool
	sections map[string]map[string]string
}

func defaultSections() map[string]map[string]string {
	return map[string]map[string]string{
		SectionSettings: {
			KeyFolderPath:     "",
			KeyExecutablePath: "",
		},
	}
}

// Open loads the store at path, creating it with an empty Settings section
// when the file does not exist. Unparsable content is a StoreCorrupt error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings path is empty")
	}
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.sections = defaultSections()
		s.created = true
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create settings directory: %w", err)
		}
		if err := s.persist(); err != nil {
			return nil, err
		}
		logger.Info("Settings file created", "path", path)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	sections, err := decode(data)
	if err != nil {
		return nil, apperrors.StoreCorrupt(path, err)
	}
	s.sections = sections

	if _, ok := s.sections[SectionSettings]; !ok {
		for k, v := range defaultSections()[SectionSettings] {
			s.setLocked(SectionSettings, k, v)
		}
		if err := s.persist(); err != nil {
			return nil, err
		}
		logger.Info("Settings section initialized", "path", path)
	}
	logger.Debug("Settings loaded", "path", path, "sections", len(s.sections))
	return s, nil
}

func decode(data []byte) (map[string]map[string]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}

	sections := make(map[string]map[string]string, len(raw))
	for name, v := range raw {
		table, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%q is not a section", name)
		}
		values := make(map[string]string, len(table))
		for key, val := range table {
			str, err := scalarString(val)
			if err != nil {
				return nil, fmt.Errorf("[%s] %s: %w", name, key, err)
			}
			values[key] = str
		}
		sections[name] = values
	}
	return sections, nil
}

// scalarString accepts hand-edited scalars (width = 800) and keeps them as text.
func scalarString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Created reports whether Open had to create the backing file.
func (s *Store) Created() bool { return s.created }

func (s *Store) Get(section, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.sections[section]
	if !ok {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

// GetInt returns fallback when the value is absent or not an integer.
func (s *Store) GetInt(section, key string, fallback int) int {
	v, ok := s.Get(section, key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.Debug("Setting is not an integer, using fallback", "section", section, "setting", key, "value", v, "fallback", fallback)
		return fallback
	}
	return n
}

// Set stores value and writes the whole store to disk before returning.
// On a write failure the in-memory value is rolled back.
func (s *Store) Set(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.sections[section][key]
	_, hadSection := s.sections[section]
	s.setLocked(section, key, value)
	if err := s.persist(); err != nil {
		switch {
		case had:
			s.sections[section][key] = prev
		case hadSection:
			delete(s.sections[section], key)
		default:
			delete(s.sections, section)
		}
		return err
	}
	logger.Info("Setting updated", "section", section, "setting", key, "value", value)
	return nil
}

func (s *Store) setLocked(section, key, value string) {
	values, ok := s.sections[section]
	if !ok {
		values = make(map[string]string)
		s.sections[section] = values
	}
	values[key] = value
}

// Sections returns the section names in sorted order.
func (s *Store) Sections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sections))
	for name := range s.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a deep copy of every section.
func (s *Store) Snapshot() map[string]map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[string]string, len(s.sections))
	for name, values := range s.sections {
		cp := make(map[string]string, len(values))
		for k, v := range values {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

func (s *Store) persist() error {
	data, err := toml.Marshal(s.sections)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := files.AtomicWrite(s.path, data, filePerms); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	return nil
}
