package vis

import (
	"fmt"
	"image/color"
	"strings"

	"myvis/internal/colordict"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type LegendOptions struct {
	// Loc is "upper right", "lower left", "center", "right", ...
	Loc string
	// FontSize is a named size ("small", "x-large") or points.
	FontSize   string
	FrameAlpha float64
	FrameOn    bool
	BgColor    string
}

// DefaultLegendOptions returns the options Legend is usually called with.
func DefaultLegendOptions() LegendOptions {
	return LegendOptions{
		Loc:        "upper right",
		FontSize:   "medium",
		FrameAlpha: 0.7,
		FrameOn:    false,
		BgColor:    colordict.Get(colordict.DefaultScheme).GridColor,
	}
}

type legendStyle struct {
	fx, fy     float64
	fontSize   vg.Length
	frameOn    bool
	background color.Color
	textColor  color.Color
}

// legendLoc returns the position of the legend box inside the data area as
// fractions of the free space.
func legendLoc(loc string) (fx, fy float64, err error) {
	loc = strings.ToLower(strings.TrimSpace(loc))
	switch loc {
	case "", "best", "upper right":
		return 1, 1, nil
	case "right", "center right":
		return 1, 0.5, nil
	case "center":
		return 0.5, 0.5, nil
	}

	parts := strings.Fields(loc)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unknown legend location %q", loc)
	}
	switch parts[0] {
	case "upper":
		fy = 1
	case "lower":
		fy = 0
	case "center":
		fy = 0.5
	default:
		return 0, 0, fmt.Errorf("unknown legend location %q", loc)
	}
	switch parts[1] {
	case "left":
		fx = 0
	case "right":
		fx = 1
	case "center":
		fx = 0.5
	default:
		return 0, 0, fmt.Errorf("unknown legend location %q", loc)
	}
	return fx, fy, nil
}

// Legend adds a legend of the labelled series to the axes at pos, or to ax
// when given.
func (v *Visualization) Legend(pos string, ax *Axes, opts LegendOptions) error {
	if ax == nil {
		var err error
		if ax, err = v.subplot(pos); err != nil {
			return err
		}
	}

	fx, fy, err := legendLoc(opts.Loc)
	if err != nil {
		return err
	}
	size, err := fontSize(opts.FontSize)
	if err != nil {
		return err
	}
	if opts.FrameAlpha < 0 || opts.FrameAlpha > 1 {
		return fmt.Errorf("framealpha must be within [0, 1], got %v", opts.FrameAlpha)
	}

	bg := opts.BgColor
	if bg == "" {
		bg = v.scheme.GridColor
	}
	bgColor, err := colordict.ParseColor(bg)
	if err != nil {
		return fmt.Errorf("legend background: %w", err)
	}

	ax.legend = &legendStyle{
		fx:         fx,
		fy:         fy,
		fontSize:   size,
		frameOn:    opts.FrameOn,
		background: colordict.WithAlpha(bgColor, opts.FrameAlpha),
		textColor:  colordict.MustParseColor(v.scheme.AxisColor),
	}
	v.logger.WithField("entries", len(ax.entries)).Debug("Added legend")
	return nil
}

var legendMargin = vg.Points(6)

func (ax *Axes) drawLegend(c draw.Canvas) {
	st := ax.legend

	l := plot.NewLegend()
	l.TextStyle.Font.Size = st.fontSize
	l.TextStyle.Color = st.textColor
	l.Top, l.Left = true, true
	l.Padding = st.fontSize / 4
	for _, e := range ax.entries {
		l.Add(e.label, e.thumbs...)
	}

	size := l.Rectangle(c).Size()
	pad := st.fontSize / 2
	w, h := size.X+2*pad, size.Y+2*pad

	x0 := c.Min.X + legendMargin + (c.Max.X-c.Min.X-w-2*legendMargin)*vg.Length(st.fx)
	y0 := c.Min.Y + legendMargin + (c.Max.Y-c.Min.Y-h-2*legendMargin)*vg.Length(st.fy)
	box := vg.Rectangle{Min: vg.Point{X: x0, Y: y0}, Max: vg.Point{X: x0 + w, Y: y0 + h}}

	if st.frameOn {
		c.FillPolygon(st.background, []vg.Point{
			box.Min,
			{X: box.Max.X, Y: box.Min.Y},
			box.Max,
			{X: box.Min.X, Y: box.Max.Y},
		})
	}

	l.Draw(draw.Canvas{
		Canvas: c.Canvas,
		Rectangle: vg.Rectangle{
			Min: vg.Point{X: box.Min.X + pad, Y: box.Min.Y + pad},
			Max: vg.Point{X: box.Max.X - pad, Y: box.Max.Y - pad},
		},
	})
}
