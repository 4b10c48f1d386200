package vis

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// dash patterns in points for a 1pt line, scaled by the line width
var dashPatterns = map[string][]float64{
	"solid":   nil,
	"dashed":  {3.7, 1.6},
	"dotted":  {1, 1.65},
	"dashdot": {6.4, 1.6, 1, 1.6},
}

var linestyleAliases = map[string]string{
	"-":  "solid",
	"--": "dashed",
	":":  "dotted",
	"-.": "dashdot",
}

// lineStyle builds a gonum line style from a linestyle name, a width in
// points and a colour. "none" and "" give an invisible line.
func lineStyle(name string, width float64, c color.Color) (draw.LineStyle, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := linestyleAliases[key]; ok {
		key = alias
	}
	if key == "none" || key == "" {
		return draw.LineStyle{}, nil
	}

	pattern, ok := dashPatterns[key]
	if !ok {
		return draw.LineStyle{}, fmt.Errorf("unknown linestyle %q", name)
	}
	if width < 0 {
		return draw.LineStyle{}, fmt.Errorf("linewidth must not be negative, got %v", width)
	}

	sty := draw.LineStyle{Color: c, Width: vg.Points(width)}
	for _, d := range pattern {
		sty.Dashes = append(sty.Dashes, vg.Points(d*width))
	}
	return sty, nil
}

// legendFontSizes maps the named font sizes to points for a 10pt base.
var legendFontSizes = map[string]float64{
	"xx-small": 5.79,
	"x-small":  6.94,
	"small":    8.33,
	"medium":   10,
	"large":    12,
	"x-large":  14.4,
	"xx-large": 17.28,
}

// fontSize accepts a named size or a number of points.
func fontSize(s string) (vg.Length, error) {
	if s == "" {
		return vg.Points(legendFontSizes["medium"]), nil
	}
	if pt, ok := legendFontSizes[strings.ToLower(s)]; ok {
		return vg.Points(pt), nil
	}
	pt, err := strconv.ParseFloat(s, 64)
	if err != nil || pt <= 0 {
		return 0, fmt.Errorf("invalid font size %q", s)
	}
	return vg.Points(pt), nil
}

// flippedTicks labels an axis whose data coordinates were negated, so the
// labels read as positive row indices growing downwards.
type flippedTicks struct{}

func (flippedTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(-max, -min)
	for i := range ticks {
		ticks[i].Value = -ticks[i].Value
	}
	return ticks
}
