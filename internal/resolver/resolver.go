// Package resolver fills in the executable and catalog directory paths from
// the settings store, asking the user through a Chooser when a value is missing.
package resolver

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/logger"
	"github.com/oukeidos/dbyview/internal/settings"
)

// ErrCancelled is returned by a Chooser when the user dismisses the prompt.
var ErrCancelled = errors.New("selection cancelled")

// Filter narrows a file chooser, e.g. {"Executable files", []string{"*.exe"}}.
type Filter struct {
	Description string
	Patterns    []string
}

// Chooser is the interactive collaborator asked for missing paths. It returns
// a non-empty path or ErrCancelled.
type Chooser interface {
	ChooseFile(title string, filters []Filter) (string, error)
	ChooseDirectory(title string) (string, error)
}

// Store is the part of settings.Store the resolver needs.
type Store interface {
	Get(section, key string) (string, bool)
	Set(section, key, value string) error
}

type Resolver struct {
	store      Store
	chooser    Chooser
	executable string
	folder     string
}

func New(store Store, chooser Chooser) *Resolver {
	return &Resolver{store: store, chooser: chooser}
}

// ExecutableFilters lists the chooser filters for the external program.
func ExecutableFilters() []Filter {
	all := Filter{Description: "All files", Patterns: []string{"*"}}
	if runtime.GOOS == "windows" {
		return []Filter{{Description: "Executable files", Patterns: []string{"*.exe", "*.bat", "*.cmd"}}, all}
	}
	return []Filter{all}
}

// Executable returns Settings.executable_path, prompting and persisting when empty.
func (r *Resolver) Executable() (string, error) {
	if r.executable != "" {
		return r.executable, nil
	}
	path, err := r.resolve(settings.KeyExecutablePath, r.chooseExecutable)
	if err != nil {
		return "", err
	}
	r.executable = path
	return path, nil
}

// Folder returns Settings.folder_path, prompting and persisting when empty.
func (r *Resolver) Folder() (string, error) {
	if r.folder != "" {
		return r.folder, nil
	}
	path, err := r.resolve(settings.KeyFolderPath, r.chooseFolder)
	if err != nil {
		return "", err
	}
	r.folder = path
	return path, nil
}

// Forget drops the in-memory value for key so the next call re-reads the store.
func (r *Resolver) Forget(key string) {
	switch key {
	case settings.KeyExecutablePath:
		r.executable = ""
	case settings.KeyFolderPath:
		r.folder = ""
	}
}

// Change asks for key again even when a value is set and persists the answer.
// A cancelled prompt keeps the current value and returns PathUnresolved.
func (r *Resolver) Change(key string) (string, error) {
	var choose func() (string, error)
	switch key {
	case settings.KeyExecutablePath:
		choose = r.chooseExecutable
	case settings.KeyFolderPath:
		choose = r.chooseFolder
	default:
		return "", fmt.Errorf("unknown path setting %q", key)
	}
	if _, err := r.ask(key, choose); err != nil {
		return "", err
	}
	r.Forget(key)
	if key == settings.KeyExecutablePath {
		return r.Executable()
	}
	return r.Folder()
}

func (r *Resolver) chooseExecutable() (string, error) {
	if r.chooser == nil {
		return "", ErrCancelled
	}
	return r.chooser.ChooseFile("Select the program that opens catalog files", ExecutableFilters())
}

func (r *Resolver) chooseFolder() (string, error) {
	if r.chooser == nil {
		return "", ErrCancelled
	}
	return r.chooser.ChooseDirectory("Select the catalog directory")
}

func (r *Resolver) resolve(key string, choose func() (string, error)) (string, error) {
	if v, ok := r.store.Get(settings.SectionSettings, key); ok && strings.TrimSpace(v) != "" {
		logger.Info("Path loaded from settings", "setting", key, "path", v)
		return v, nil
	}
	logger.Info("Path not configured, asking the user", "setting", key)
	return r.ask(key, choose)
}

// ask runs choose and persists a non-empty answer.
func (r *Resolver) ask(key string, choose func() (string, error)) (string, error) {
	chosen, err := choose()
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			logger.Warn("Path selection cancelled", "setting", key)
		} else {
			logger.Error("Path selection failed", "setting", key, "error", err)
		}
		return "", apperrors.PathUnresolved(key, err)
	}
	chosen = strings.TrimSpace(chosen)
	if chosen == "" {
		logger.Warn("Path selection returned nothing", "setting", key)
		return "", apperrors.PathUnresolved(key, ErrCancelled)
	}

	if err := r.store.Set(settings.SectionSettings, key, chosen); err != nil {
		return "", err
	}
	logger.Info("Path chosen by user", "setting", key, "path", chosen)
	return chosen, nil
}
