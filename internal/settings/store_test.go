package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/dbyview/internal/apperrors"
)

func TestOpen_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dbyview.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !s.Created() {
		t.Fatalf("expected Created() for a new file")
	}
	for _, key := range []string{KeyExecutablePath, KeyFolderPath} {
		v, ok := s.Get(SectionSettings, key)
		if !ok || v != "" {
			t.Fatalf("Get(%s) = (%q, %v), want empty present value", key, v, ok)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("settings file not persisted: %v", err)
	}
	if !strings.Contains(string(data), "[Settings]") {
		t.Fatalf("persisted file lacks Settings section: %q", data)
	}
}

func TestOpen_EmptyFileGetsSettingsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbyview.toml")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Created() {
		t.Fatalf("existing file must not report Created()")
	}
	if _, ok := s.Get(SectionSettings, KeyFolderPath); !ok {
		t.Fatalf("expected folder_path to be initialized")
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := reopened.Sections(); len(got) != 1 || got[0] != SectionSettings {
		t.Fatalf("Sections() = %v", got)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "[Settings\nfolder_path = 'x'\n"},
		{name: "top level value", content: "folder_path = 'x'\n"},
		{name: "nested table", content: "[Settings.inner]\na = 'b'\n"},
		{name: "array value", content: "[Settings]\nfolder_path = ['a', 'b']\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dbyview.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0600); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := Open(path)
			if err == nil {
				t.Fatalf("expected StoreCorrupt error")
			}
			if !apperrors.IsFatal(err) {
				t.Fatalf("expected fatal store_corrupt, got %v", err)
			}
			if !strings.Contains(apperrors.PublicMessage(err), path) {
				t.Fatalf("message should name the file: %q", apperrors.PublicMessage(err))
			}
			data, _ := os.ReadFile(path)
			if string(data) != tc.content {
				t.Fatalf("corrupt file must be left untouched")
			}
		})
	}
}

func TestSet_WriteThroughSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbyview.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set(SectionSettings, KeyExecutablePath, `C:\Program Files\Viewer\viewer.exe`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(SectionWindow, KeyWidth, "120"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := s.Get(SectionSettings, KeyExecutablePath); v != `C:\Program Files\Viewer\viewer.exe` {
		t.Fatalf("Get after Set = %q", v)
	}

	// No Close or flush: a fresh Open must see the values.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if v, ok := reopened.Get(SectionSettings, KeyExecutablePath); !ok || v != `C:\Program Files\Viewer\viewer.exe` {
		t.Fatalf("reopened Get = (%q, %v)", v, ok)
	}
	if got := reopened.GetInt(SectionWindow, KeyWidth, 0); got != 120 {
		t.Fatalf("reopened GetInt = %d, want 120", got)
	}
}

func TestGet_Missing(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "dbyview.toml"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := s.Get("Nope", "x"); ok {
		t.Fatalf("missing section must be absent")
	}
	if _, ok := s.Get(SectionSettings, "nope"); ok {
		t.Fatalf("missing key must be absent")
	}
}

func TestGetInt_Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbyview.toml")
	content := "[Settings]\nfolder_path = ''\nexecutable_path = ''\n\n[WindowSize]\nwidth = 800\nheight = 'tall'\nratio = 1.5\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tests := []struct {
		name     string
		key      string
		fallback int
		want     int
	}{
		{name: "hand edited integer", key: KeyWidth, fallback: 80, want: 800},
		{name: "non numeric", key: KeyHeight, fallback: 24, want: 24},
		{name: "float", key: "ratio", fallback: 7, want: 7},
		{name: "absent", key: "depth", fallback: 3, want: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.GetInt(SectionWindow, tc.key, tc.fallback); got != tc.want {
				t.Fatalf("GetInt(%s) = %d, want %d", tc.key, got, tc.want)
			}
		})
	}
	if v, _ := s.Get(SectionWindow, "ratio"); v != "1.5" {
		t.Fatalf("float kept as %q", v)
	}
}

func TestSet_RollsBackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbyview.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Make the destination a directory so the rename fails.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(path, "child"), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := s.Set("Extra", "k", "v"); err == nil {
		t.Fatalf("expected write failure")
	}
	if _, ok := s.Get("Extra", "k"); ok {
		t.Fatalf("failed Set must not leave the value in memory")
	}
	for _, name := range s.Sections() {
		if name == "Extra" {
			t.Fatalf("failed Set must not leave an empty section")
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "dbyview.toml"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	snap := s.Snapshot()
	snap[SectionSettings][KeyFolderPath] = "/mutated"
	if v, _ := s.Get(SectionSettings, KeyFolderPath); v != "" {
		t.Fatalf("snapshot mutation leaked into store: %q", v)
	}
}
