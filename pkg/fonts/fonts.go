// Package fonts provides the font faces diagrams are measured and drawn with.
//
// The fonts are the Go font family from golang.org/x/image, compiled into
// the binary, so label measurement and rendering agree without any system
// fonts installed.
package fonts

import (
	"encoding/base64"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Face is one embeddable font.
type Face struct {
	// Name is the identifier used in style files.
	Name string
	// Family is the CSS font-family name used when the font is embedded.
	Family string
	// Fallback is the CSS font-family list used when it is not.
	Fallback string
	TTF      []byte

	once   sync.Once
	base64 string
}

// Base64 returns the TTF data base64 encoded for an SVG @font-face rule.
// The result is cached after first computation.
func (f *Face) Base64() string {
	f.once.Do(func() {
		f.base64 = base64.StdEncoding.EncodeToString(f.TTF)
	})
	return f.base64
}

var (
	// Regular is Go Regular, the default label font.
	Regular = &Face{
		Name:     "regular",
		Family:   "Go",
		Fallback: `'Go', 'DejaVu Sans', 'Helvetica', sans-serif`,
		TTF:      goregular.TTF,
	}
	// Mono is Go Mono, for diagrams that should line up like source code.
	Mono = &Face{
		Name:     "mono",
		Family:   "Go Mono",
		Fallback: `'Go Mono', 'DejaVu Sans Mono', 'Menlo', monospace`,
		TTF:      gomono.TTF,
	}
)

// ByName returns the face called name, case-insensitively.
func ByName(name string) (*Face, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Regular.Name:
		return Regular, true
	case Mono.Name:
		return Mono, true
	}
	return nil, false
}

// Names lists the available face names.
func Names() []string { return []string{Regular.Name, Mono.Name} }
