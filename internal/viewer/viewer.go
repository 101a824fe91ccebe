// Package viewer runs the startup sequence and the user actions of a dbyview
// session on top of the settings, resolver, catalog, launch and window
// packages. It has no presentation of its own.
package viewer

import (
	"errors"
	"fmt"

	"github.com/oukeidos/dbyview/internal/catalog"
	"github.com/oukeidos/dbyview/internal/launch"
	"github.com/oukeidos/dbyview/internal/logger"
	"github.com/oukeidos/dbyview/internal/resolver"
	"github.com/oukeidos/dbyview/internal/settings"
	"github.com/oukeidos/dbyview/internal/window"
)

// ErrNoSuchEntry is returned by OpenByName when no entry has the given name.
var ErrNoSuchEntry = errors.New("no catalog entry with that name")

type Config struct {
	Location  settings.Location
	Extension string
	// Fallback is the geometry used when none has been saved.
	Fallback window.Geometry
	// OnLaunch is called from the launch goroutine after each spawn attempt.
	OnLaunch func(launch.Result)
}

type Viewer struct {
	cfg        Config
	store      *settings.Store
	resolver   *resolver.Resolver
	library    *catalog.Library
	launcher   *launch.Coordinator
	executable string
	folder     string
}

// Start opens the settings store, resolves the executable and catalog
// directory (asking chooser for whatever is missing) and runs the first scan.
//
// A corrupt store or an unresolved path returns a nil Viewer. An invalid
// catalog root returns a usable Viewer with an empty catalog together with
// the InvalidRoot error.
func Start(cfg Config, chooser resolver.Chooser) (*Viewer, error) {
	ext := cfg.Extension
	if ext == "" {
		ext = catalog.DefaultExtension
	}
	ext, err := catalog.NormalizeExtension(ext)
	if err != nil {
		return nil, err
	}
	cfg.Extension = ext
	if !cfg.Fallback.Valid() {
		cfg.Fallback = window.Default
	}

	store, err := settings.Open(cfg.Location.Path())
	if err != nil {
		return nil, err
	}
	logger.Info("Settings loaded", "path", store.Path(), "created", store.Created())

	r := resolver.New(store, chooser)
	exe, err := r.Executable()
	if err != nil {
		return nil, err
	}
	folder, err := r.Folder()
	if err != nil {
		return nil, err
	}

	launcher := launch.NewCoordinator()
	launcher.OnResult = cfg.OnLaunch

	v := &Viewer{
		cfg:        cfg,
		store:      store,
		resolver:   r,
		library:    catalog.NewLibrary(folder, ext),
		launcher:   launcher,
		executable: exe,
		folder:     folder,
	}
	_, err = v.Refresh()
	return v, err
}

// Refresh rescans the catalog directory and replaces the current catalog.
func (v *Viewer) Refresh() (*catalog.Catalog, error) {
	cat, err := v.library.Refresh()
	if err != nil {
		logger.Warn("Catalog scan failed", "root", v.folder, "error", err)
	}
	return cat, err
}

func (v *Viewer) Catalog() *catalog.Catalog {
	return v.library.Current()
}

// Open launches the entry at index of the catalog with the given generation.
func (v *Viewer) Open(generation uint64, index int) (<-chan launch.Result, error) {
	entry, err := v.library.Select(generation, index)
	if err != nil {
		logger.Warn("Selection rejected", "generation", generation, "index", index, "error", err)
		return nil, err
	}
	return v.launcher.Launch(v.executable, entry.Path), nil
}

// OpenByName launches the first entry whose display name matches name.
func (v *Viewer) OpenByName(name string) (catalog.Entry, <-chan launch.Result, error) {
	entry, _, ok := v.library.Lookup(name)
	if !ok {
		return catalog.Entry{}, nil, fmt.Errorf("%w: %q", ErrNoSuchEntry, name)
	}
	return entry, v.launcher.Launch(v.executable, entry.Path), nil
}

// ChangeExecutable asks for a new program and uses it for later launches.
func (v *Viewer) ChangeExecutable() error {
	exe, err := v.resolver.Change(settings.KeyExecutablePath)
	if err != nil {
		return err
	}
	v.executable = exe
	return nil
}

// ChangeFolder asks for a new catalog directory and rescans it. The old
// catalog's selections become stale.
func (v *Viewer) ChangeFolder() (*catalog.Catalog, error) {
	folder, err := v.resolver.Change(settings.KeyFolderPath)
	if err != nil {
		return v.Catalog(), err
	}
	v.folder = folder
	v.library.SetRoot(folder)
	return v.Refresh()
}

// Geometry returns the saved window size or the configured fallback.
func (v *Viewer) Geometry() window.Geometry {
	return window.Restore(v.store, v.cfg.Fallback)
}

// Close saves g when it is valid and waits for pending launches to spawn.
func (v *Viewer) Close(g window.Geometry) error {
	var err error
	if g.Valid() {
		if err = window.Save(v.store, g); err == nil {
			logger.Info("Window size saved", "width", g.Width, "height", g.Height)
		}
	}
	v.launcher.Wait()
	return err
}

func (v *Viewer) Store() *settings.Store { return v.store }

func (v *Viewer) Executable() string { return v.executable }

func (v *Viewer) Folder() string { return v.folder }

func (v *Viewer) Extension() string { return v.cfg.Extension }
