// Package colordict holds the named colour schemes used by the plotting
// layer: a segmented colormap for density images plus the line, shadow,
// helper and axis colours that decorate every other primitive.
package colordict

import "sort"

// DefaultScheme is returned by Get for unknown scheme names.
const DefaultScheme = "RAINBOW"

// Anchor is one (x, y0, y1) entry of a colormap channel. Below x the channel
// approaches y0, above x it leaves from y1.
type Anchor struct {
	X  float64
	Y0 float64
	Y1 float64
}

// Segments holds the anchors of the red, green and blue channels.
type Segments struct {
	Red   []Anchor
	Green []Anchor
	Blue  []Anchor
}

type Scheme struct {
	Name           string
	Segments       Segments
	PrimaryColors  []string
	PrimaryShadows []string
	HelperColors   []string
	Background     string
	GridColor      string
	AxisColor      string
}

// SeriesStyle is the colour triple used for the i-th series of a figure.
type SeriesStyle struct {
	Color  string
	Shadow string
	Helper string
}

var schemes = map[string]Scheme{
	"RAINBOW": {
		Name: "RAINBOW",
		Segments: Segments{
			Red: []Anchor{
				{0.00, 0.00000, 0.28125},
				{0.33, 0.46484, 0.46484},
				{0.66, 0.67967, 0.67967},
				{1.00, 0.90625, 0.90625},
			},
			Green: []Anchor{
				{0.00, 0.00000, 0.26562},
				{0.33, 0.54297, 0.54297},
				{0.66, 0.73828, 0.73828},
				{1.00, 0.83984, 0.83984},
			},
			Blue: []Anchor{
				{0.00, 0.00000, 0.29687},
				{0.33, 0.58594, 0.58594},
				{0.66, 0.75000, 0.75000},
				{1.00, 0.73828, 0.73828},
			},
		},
		PrimaryColors:  []string{"#ff4843", "#328bdc", "#5fae5b", "#fbac47"},
		PrimaryShadows: []string{"#d97b78", "#84a8ca", "#88af85", "#d9b876"},
		HelperColors:   []string{"#e68570", "#688eb5", "#91ab59", "#e1ca61"},
		Background:     "#ffffff",
		GridColor:      "#ffffff",
		AxisColor:      "#000000",
	},
	"ICE": {
		Name: "ICE",
		Segments: Segments{
			Red: []Anchor{
				{0.00, 0.00000, 0.94531},
				{0.05, 0.73047, 0.73047},
				{0.21, 0.62890, 0.62890},
				{1.00, 0.09765, 0.09765},
			},
			Green: []Anchor{
				{0.00, 0.00000, 0.94531},
				{0.05, 0.72656, 0.72656},
				{0.21, 0.83203, 0.83203},
				{1.00, 0.58203, 0.58203},
			},
			Blue: []Anchor{
				{0.00, 0.00000, 0.94531},
				{0.05, 0.74219, 0.74219},
				{0.21, 0.88281, 0.88281},
				{1.00, 0.67578, 0.67578},
			},
		},
		PrimaryColors:  []string{"#ff4843", "#328bdc", "#fbac47", "#5fae5b"},
		PrimaryShadows: []string{"#d97b78", "#84a8ca", "#d9b876", "#88af85"},
		HelperColors:   []string{"#e68570", "#688eb5", "#e1ca61", "#91ab59"},
		Background:     "#f0f0f0",
		GridColor:      "#ffffff",
		AxisColor:      "#666666",
	},
}

// Get returns the scheme registered under name, or the RAINBOW scheme when
// no such scheme exists.
func Get(name string) Scheme {
	if s, ok := schemes[name]; ok {
		return s
	}
	return schemes[DefaultScheme]
}

// Lookup is like Get but reports whether name was found.
func Lookup(name string) (Scheme, bool) {
	s, ok := schemes[name]
	return s, ok
}

func Names() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Style returns the colours for the series at index, cycling through the
// primary, shadow and helper lists.
func (s Scheme) Style(index int) SeriesStyle {
	if index < 0 {
		index = 0
	}
	return SeriesStyle{
		Color:  s.PrimaryColors[index%len(s.PrimaryColors)],
		Shadow: s.PrimaryShadows[index%len(s.PrimaryShadows)],
		Helper: s.HelperColors[index%len(s.HelperColors)],
	}
}

// Colormap builds the segmented colormap of the scheme.
func (s Scheme) Colormap() *Colormap {
	return NewColormap(s.Name, s.Segments)
}
