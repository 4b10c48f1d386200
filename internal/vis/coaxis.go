package vis

import (
	"fmt"
	"image/color"
	"math"

	"myvis/internal/colordict"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type CoaxisOptions struct {
	// Axis is "x" for a twin on top or "y" for a twin on the right.
	Axis string
	// Scale is "linear" or "log".
	Scale          string
	HideMinorTicks bool
}

// twinAxis is a secondary axis sharing the limits of its parent but with
// its own scale, tick positions and labels.
type twinAxis struct {
	axis   string
	scale  string
	ticks  []float64
	labels []string
	label  string
	minor  bool

	color         color.Color
	tickFontSize  float64
	labelFontSize float64
}

const (
	tickLength = 3.5
	tickPad    = 3
)

// Coaxis adds a twin axis to ax (or the current axes) with custom ticks.
func (v *Visualization) Coaxis(ticksLoc []float64, tickLabels []string, label string, ax *Axes, opts CoaxisOptions, args Args) error {
	if ax == nil {
		var err error
		if ax, err = v.gca(); err != nil {
			return err
		}
	}
	if ax.threeD {
		return fmt.Errorf("coaxis: cannot add a twin axis to 3d axes")
	}
	if len(ticksLoc) != len(tickLabels) {
		return fmt.Errorf("coaxis: got %d tick positions and %d labels", len(ticksLoc), len(tickLabels))
	}

	axis := opts.Axis
	if axis == "" {
		axis = "x"
	}
	if axis != "x" && axis != "y" {
		return fmt.Errorf("coaxis: unknown axis %q", opts.Axis)
	}
	scale := ScaleLinear
	if opts.Scale != "" {
		var err error
		if scale, err = parseScale("scale", opts.Scale); err != nil {
			return fmt.Errorf("coaxis: %w", err)
		}
	}

	if err := args.check(); err != nil {
		return fmt.Errorf("coaxis: %w", err)
	}
	params := v.getParams(args)
	if !params.Bool("silent", false) {
		v.printArgs("coaxis", args)
	}

	tw := &twinAxis{
		axis:          axis,
		scale:         scale,
		ticks:         append([]float64(nil), ticksLoc...),
		labels:        append([]string(nil), tickLabels...),
		label:         label,
		minor:         !opts.HideMinorTicks,
		color:         colordict.MustParseColor(v.scheme.AxisColor),
		tickFontSize:  v.tickFontSize,
		labelFontSize: v.labelFontSize,
	}
	ax.twins = append(ax.twins, tw)

	v.styleSpines(ax)
	v.setAxisColor(ax)

	v.logger.WithFields(logrus.Fields{
		"axis":  axis,
		"scale": scale,
		"ticks": len(ticksLoc),
	}).Debug("Added twin axis")
	return nil
}

func (tw *twinAxis) styles(p *plot.Plot) (tick, label text.Style) {
	tick = p.X.Tick.Label
	label = p.X.Label.TextStyle
	tick.Color, label.Color = tw.color, tw.color
	if tw.tickFontSize > 0 {
		tick.Font.Size = vg.Points(tw.tickFontSize)
	}
	if tw.labelFontSize > 0 {
		label.Font.Size = vg.Points(tw.labelFontSize)
	}
	tick.Rotation, label.Rotation = 0, 0
	return tick, label
}

// size returns the width of the band the twin needs outside the data area.
func (tw *twinAxis) size(p *plot.Plot) vg.Length {
	tick, label := tw.styles(p)
	band := vg.Points(tickLength + tickPad)

	var ticks vg.Length
	for _, l := range tw.labels {
		var s vg.Length
		if tw.axis == "x" {
			s = tick.Height(l)
		} else {
			s = tick.Width(l)
		}
		if s > ticks {
			ticks = s
		}
	}
	band += ticks
	if tw.label != "" {
		band += vg.Points(tickPad) + label.Height(tw.label)
	}
	return band
}

// reserveTwins shrinks area so every twin axis fits beside the data area.
func (ax *Axes) reserveTwins(area draw.Canvas, p *plot.Plot) draw.Canvas {
	for _, tw := range ax.twins {
		if tw.axis == "x" {
			area.Max.Y -= tw.size(p)
		} else {
			area.Max.X -= tw.size(p)
		}
	}
	return area
}

func (tw *twinAxis) normalizer() plot.Normalizer {
	if tw.scale == ScaleLog {
		return plot.LogScale{}
	}
	return plot.LinearScale{}
}

func (tw *twinAxis) draw(c draw.Canvas, p *plot.Plot) error {
	primary := &p.X
	if tw.axis == "y" {
		primary = &p.Y
	}
	min, max := primary.Min, primary.Max
	if tw.scale == ScaleLog && (min <= 0 || max <= 0) {
		return fmt.Errorf("log scale on twin %s axis needs positive limits, got [%g, %g]", tw.axis, min, max)
	}

	norm := tw.normalizer()
	pos := func(v float64) (vg.Length, bool) {
		f := norm.Normalize(min, max, v)
		if math.IsNaN(f) || f < 0 || f > 1 {
			return 0, false
		}
		if tw.axis == "x" {
			return c.Min.X + vg.Length(f)*(c.Max.X-c.Min.X), true
		}
		return c.Min.Y + vg.Length(f)*(c.Max.Y-c.Min.Y), true
	}

	tickSty, labelSty := tw.styles(p)
	line := draw.LineStyle{Color: tw.color, Width: vg.Points(0.8)}
	long, short := vg.Points(tickLength), vg.Points(tickLength/2)

	if tw.axis == "x" {
		c.StrokeLine2(line, c.Min.X, c.Max.Y, c.Max.X, c.Max.Y)
	} else {
		c.StrokeLine2(line, c.Max.X, c.Min.Y, c.Max.X, c.Max.Y)
	}

	tickSty.XAlign, tickSty.YAlign = draw.XCenter, draw.YBottom
	if tw.axis == "y" {
		tickSty.XAlign, tickSty.YAlign = draw.XLeft, draw.YCenter
	}

	if tw.minor && tw.scale == ScaleLog {
		for _, t := range (plot.LogTicks{Prec: -1}).Ticks(min, max) {
			if t.Label != "" {
				continue
			}
			if at, ok := pos(t.Value); ok {
				tw.tick(c, line, at, short)
			}
		}
	}

	var far vg.Length
	for i, v := range tw.ticks {
		at, ok := pos(v)
		if !ok {
			continue
		}
		tw.tick(c, line, at, long)
		off := long + vg.Points(tickPad)
		if tw.axis == "x" {
			c.FillText(tickSty, vg.Point{X: at, Y: c.Max.Y + off}, tw.labels[i])
			if h := tickSty.Height(tw.labels[i]); h > far {
				far = h
			}
		} else {
			c.FillText(tickSty, vg.Point{X: c.Max.X + off, Y: at}, tw.labels[i])
			if w := tickSty.Width(tw.labels[i]); w > far {
				far = w
			}
		}
	}

	if tw.label == "" {
		return nil
	}
	off := long + vg.Points(2*tickPad) + far
	if tw.axis == "x" {
		labelSty.XAlign, labelSty.YAlign = draw.XCenter, draw.YBottom
		c.FillText(labelSty, vg.Point{X: c.Center().X, Y: c.Max.Y + off}, tw.label)
		return nil
	}
	labelSty.Rotation = -math.Pi / 2
	labelSty.XAlign, labelSty.YAlign = draw.XCenter, draw.YBottom
	c.FillText(labelSty, vg.Point{X: c.Max.X + off, Y: c.Center().Y}, tw.label)
	return nil
}

func (tw *twinAxis) tick(c draw.Canvas, line draw.LineStyle, at, length vg.Length) {
	if tw.axis == "x" {
		c.StrokeLine2(line, at, c.Max.Y, at, c.Max.Y+length)
		return
	}
	c.StrokeLine2(line, c.Max.X, at, c.Max.X+length, at)
}
