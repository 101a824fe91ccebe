package files

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oukeidos/dbyview/internal/logger"
)

// AtomicWrite writes data to a temp file in the destination directory, syncs
// it and renames it over path. Readers see either the old or the new content.
func AtomicWrite(path string, data []byte, perms os.FileMode) error {
	if err := RejectSymlinkPath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmpFile.Chmod(perms); err != nil {
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := renameAtomic(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true

	if err := syncDir(dir); err != nil {
		logger.Debug("Directory fsync failed", "path", dir, "error", err)
	}
	return nil
}

// MoveAside renames path to a free sibling name (see SafePath) and returns
// the new location. A missing path is not an error; it returns "".
func MoveAside(path, suffix string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if err := RejectSymlinkPath(path); err != nil {
		return "", err
	}
	target, _, err := SafePath(path + suffix)
	if err != nil {
		return "", err
	}
	if err := renameAtomic(path, target); err != nil {
		return "", fmt.Errorf("failed to move %s aside: %w", path, err)
	}
	return target, nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
