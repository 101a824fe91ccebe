// Package window remembers the size of the viewer between sessions.
package window

import (
	"fmt"
	"strconv"

	"github.com/oukeidos/dbyview/internal/settings"
)

// Geometry is measured in terminal cells: Width columns by Height rows.
type Geometry struct {
	Width  int
	Height int
}

// Default is used when nothing usable has been saved yet.
var Default = Geometry{Width: 80, Height: 24}

func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Reader is the part of settings.Store Restore needs.
type Reader interface {
	GetInt(section, key string, fallback int) int
}

// Writer is the part of settings.Store Save needs.
type Writer interface {
	Set(section, key, value string) error
}

// Restore reads WindowSize.width and WindowSize.height, falling back per
// dimension when a value is absent, unparsable or not positive.
func Restore(store Reader, fallback Geometry) Geometry {
	g := Geometry{
		Width:  store.GetInt(settings.SectionWindow, settings.KeyWidth, fallback.Width),
		Height: store.GetInt(settings.SectionWindow, settings.KeyHeight, fallback.Height),
	}
	if g.Width <= 0 {
		g.Width = fallback.Width
	}
	if g.Height <= 0 {
		g.Height = fallback.Height
	}
	return g
}

// Save writes both dimensions through to the store.
func Save(store Writer, g Geometry) error {
	if !g.Valid() {
		return fmt.Errorf("invalid window size %s", g)
	}
	if err := store.Set(settings.SectionWindow, settings.KeyWidth, strconv.Itoa(g.Width)); err != nil {
		return err
	}
	return store.Set(settings.SectionWindow, settings.KeyHeight, strconv.Itoa(g.Height))
}
