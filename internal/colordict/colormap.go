package colordict

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
)

// Colormap is a piecewise linear colormap defined by per-channel anchors.
// It satisfies palette.ColorMap so it can drive heat maps and colour bars.
type Colormap struct {
	name     string
	segments Segments
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*Colormap)(nil)

func NewColormap(name string, segments Segments) *Colormap {
	return &Colormap{
		name:     name,
		segments: segments,
		min:      0,
		max:      1,
		alpha:    1,
	}
}

func (m *Colormap) Name() string { return m.name }

// Normalized returns the colour at position t of the unit interval. Values
// outside [0, 1] are clamped.
func (m *Colormap) Normalized(t float64) color.Color {
	t = math.Max(0, math.Min(1, t))
	c := colorful.Color{
		R: channel(m.segments.Red, t),
		G: channel(m.segments.Green, t),
		B: channel(m.segments.Blue, t),
	}.Clamped()
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(m.alpha * 255))}
}

// channel interpolates from y1 of the anchor left of t to y0 of the anchor
// right of t.
func channel(anchors []Anchor, t float64) float64 {
	switch len(anchors) {
	case 0:
		return 0
	case 1:
		return anchors[0].Y1
	}
	if t <= anchors[0].X {
		return anchors[0].Y1
	}
	for i := 1; i < len(anchors); i++ {
		right := anchors[i]
		if t > right.X {
			continue
		}
		left := anchors[i-1]
		span := right.X - left.X
		if span <= 0 {
			return right.Y0
		}
		f := (t - left.X) / span
		return left.Y1 + f*(right.Y0-left.Y1)
	}
	return anchors[len(anchors)-1].Y0
}

// At returns the colour for v scaled between Min and Max.
func (m *Colormap) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	if v < m.min {
		return nil, palette.ErrUnderflow
	}
	if v > m.max {
		return nil, palette.ErrOverflow
	}
	if m.max == m.min {
		return m.Normalized(0), nil
	}
	return m.Normalized((v - m.min) / (m.max - m.min)), nil
}

func (m *Colormap) Max() float64     { return m.max }
func (m *Colormap) SetMax(v float64) { m.max = v }
func (m *Colormap) Min() float64     { return m.min }
func (m *Colormap) SetMin(v float64) { m.min = v }
func (m *Colormap) Alpha() float64   { return m.alpha }

func (m *Colormap) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("colordict: alpha out of range")
	}
	m.alpha = a
}

// Palette samples n evenly spaced colours, first and last included.
func (m *Colormap) Palette(n int) palette.Palette {
	colors := make(sampled, n)
	for i := range colors {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		colors[i] = m.Normalized(t)
	}
	return colors
}

type sampled []color.Color

func (s sampled) Colors() []color.Color { return s }
