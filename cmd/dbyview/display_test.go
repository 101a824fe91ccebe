package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/dbyview/internal/catalog"
	"github.com/rivo/uniseg"
)

func TestFitWidth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "pad", in: "abc", width: 5, want: "abc  "},
		{name: "exact", in: "abcde", width: 5, want: "abcde"},
		{name: "truncate", in: "abcdefgh", width: 5, want: "abcd…"},
		{name: "wide_runes", in: "日本語テキスト", width: 7, want: "日本語…"},
		{name: "wide_runes_odd_cut", in: "日本語テキスト", width: 6, want: "日本… "},
		{name: "zero", in: "abc", width: 0, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fitWidth(tc.in, tc.width)
			if got != tc.want {
				t.Fatalf("fitWidth(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
			}
			if tc.width > 0 && uniseg.StringWidth(got) != tc.width {
				t.Fatalf("width of %q = %d, want %d", got, uniseg.StringWidth(got), tc.width)
			}
		})
	}
}

func TestFitWidth_KeepsGraphemeClusters(t *testing.T) {
	// "e" + combining acute accent must not be split.
	got := fitWidth("e\u0301e\u0301e\u0301e\u0301", 3)
	if got != "e\u0301e\u0301…" {
		t.Fatalf("got %q", got)
	}
}

func TestPrintCatalog(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"short.dby", "nested/a-very-long-name-that-keeps-going-and-going-forever.dby"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	cat, err := catalog.Scan(root, ".dby")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var buf bytes.Buffer
	printCatalog(&buf, cat, 60)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 lines, got:\n%s", buf.String())
	}
	for _, l := range lines[1:] {
		if w := uniseg.StringWidth(l); w > 60 {
			t.Fatalf("line %q is %d cells wide", l, w)
		}
	}
	if !strings.Contains(lines[1], "…") || !strings.Contains(lines[1], "nested") {
		t.Fatalf("long name should be truncated and show its folder: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  2  short") {
		t.Fatalf("unexpected line %q", lines[2])
	}
}

func TestPrintCatalog_Empty(t *testing.T) {
	cat, err := catalog.Scan(t.TempDir(), ".dby")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var buf bytes.Buffer
	printCatalog(&buf, cat, 80)
	if !strings.HasPrefix(buf.String(), "No files in ") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
