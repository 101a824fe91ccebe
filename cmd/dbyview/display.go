package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/oukeidos/dbyview/internal/catalog"
	"github.com/rivo/uniseg"
)

const (
	minNameWidth = 8
	maxNameWidth = 40
)

// fitWidth pads or truncates s to exactly width terminal cells. Truncated
// text ends with an ellipsis and never splits a grapheme cluster.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := uniseg.StringWidth(s)
	if w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := g.Width()
		if used+cw > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += cw
	}
	b.WriteString("…")
	used++
	return b.String() + strings.Repeat(" ", width-used)
}

// printCatalog writes one numbered line per entry, fitted to width columns.
// Numbers are 1-based.
func printCatalog(w io.Writer, cat *catalog.Catalog, width int) {
	entries := cat.Entries()
	if len(entries) == 0 {
		fmt.Fprintf(w, "No files in %s\n", cat.Root())
		return
	}
	fmt.Fprintf(w, "%s (%d)\n", cat.Root(), len(entries))

	numWidth := len(strconv.Itoa(len(entries)))
	nameWidth := minNameWidth
	for _, e := range entries {
		if nw := uniseg.StringWidth(e.Name); nw > nameWidth {
			nameWidth = nw
		}
	}
	if nameWidth > maxNameWidth {
		nameWidth = maxNameWidth
	}
	// "  <num>  <name>  <dir>"
	dirWidth := width - numWidth - nameWidth - 6
	for i, e := range entries {
		line := fmt.Sprintf("  %*d  %s", numWidth, i+1, fitWidth(e.Name, nameWidth))
		if dirWidth >= minNameWidth {
			line += "  " + fitWidth(relativeDir(cat.Root(), e.Path), dirWidth)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func relativeDir(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return rel
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
