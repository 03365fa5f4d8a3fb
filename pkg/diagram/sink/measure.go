package sink

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/fonts"
)

// FontMeasurer measures labels with real glyph advances.
// It is safe for concurrent use.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
	size float64
}

// NewFontMeasurer measures with face at size points. A nil face means
// fonts.Regular.
func NewFontMeasurer(face *fonts.Face, size float64) (*FontMeasurer, error) {
	if face == nil {
		face = fonts.Regular
	}
	return NewFontMeasurerTTF(face.TTF, size)
}

// NewFontMeasurerTTF measures with the given TrueType or OpenType font data.
func NewFontMeasurerTTF(data []byte, size float64) (*FontMeasurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return &FontMeasurer{face: face, size: size}, nil
}

// Measure returns the advance width of label and the line height.
func (m *FontMeasurer) Measure(label string) layout.Extent {
	m.mu.Lock()
	defer m.mu.Unlock()
	adv := font.MeasureString(m.face, label)
	h := m.face.Metrics().Height
	return layout.Extent{
		Width:  float64(adv) / 64,
		Height: float64(h) / 64,
	}
}

var _ layout.Measurer = (*FontMeasurer)(nil)
