package vis

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	ScaleLinear = "linear"
	ScaleLog    = "log"

	// fraction of the data span added on both sides of autoscaled axes
	axisMargin = 0.05
)

// Position locates a subplot in a Rows x Cols grid. Index is 1-based and
// runs row by row.
type Position struct {
	Rows, Cols, Index int
}

// ParsePosition accepts the three digit form ("111", "212") and the comma
// form ("2,3,5") for grids with more than nine cells.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultPos
	}

	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		if len(s) != 3 {
			return Position{}, fmt.Errorf("invalid subplot position %q", s)
		}
		parts = []string{s[0:1], s[1:2], s[2:3]}
	}
	if len(parts) != 3 {
		return Position{}, fmt.Errorf("invalid subplot position %q", s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Position{}, fmt.Errorf("invalid subplot position %q: %w", s, err)
		}
		nums[i] = n
	}

	p := Position{Rows: nums[0], Cols: nums[1], Index: nums[2]}
	if p.Rows <= 0 || p.Cols <= 0 {
		return Position{}, fmt.Errorf("invalid subplot grid in %q", s)
	}
	if p.Index < 1 || p.Index > p.Rows*p.Cols {
		return Position{}, fmt.Errorf("subplot index %d out of range in %q", p.Index, s)
	}
	return p, nil
}

func (p Position) String() string {
	if p.Rows < 10 && p.Cols < 10 && p.Index < 10 {
		return fmt.Sprintf("%d%d%d", p.Rows, p.Cols, p.Index)
	}
	return fmt.Sprintf("%d,%d,%d", p.Rows, p.Cols, p.Index)
}

// cell returns the part of the figure canvas covered by the subplot.
func (p Position) cell(c draw.Canvas) draw.Canvas {
	w := (c.Max.X - c.Min.X) / vg.Length(p.Cols)
	h := (c.Max.Y - c.Min.Y) / vg.Length(p.Rows)
	row := (p.Index - 1) / p.Cols
	col := (p.Index - 1) % p.Cols

	minX := c.Min.X + vg.Length(col)*w
	maxY := c.Max.Y - vg.Length(row)*h
	return draw.Canvas{
		Canvas: c.Canvas,
		Rectangle: vg.Rectangle{
			Min: vg.Point{X: minX, Y: maxY - h},
			Max: vg.Point{X: minX + w, Y: maxY},
		},
	}
}

type axisState struct {
	label  string
	scale  string
	min    float64
	max    float64
	hasMin bool
	hasMax bool
}

func (a *axisState) setLimits(min, max float64) {
	a.min, a.max = min, max
	a.hasMin, a.hasMax = true, true
}

func (a axisState) log() bool { return a.scale == ScaleLog }

type legendEntry struct {
	label  string
	thumbs []plot.Thumbnailer
}

// Axes is one subplot. It records what was drawn on it and how it should be
// styled; the gonum plot is assembled when the figure is rendered.
type Axes struct {
	fig    *Visualization
	pos    Position
	threeD bool
	image  bool

	plotters []plot.Plotter
	entries  []legendEntry
	series   []*series3D

	x, y, z axisState
	title   string

	sharex, sharey *Axes

	grid   *gridStyle
	legend *legendStyle
	twins  []*twinAxis

	axisColor     color.Color
	spineColor    color.Color
	tickFontSize  float64
	labelFontSize float64
}

func (ax *Axes) Position() Position { return ax.pos }
func (ax *Axes) Is3D() bool         { return ax.threeD }

// XLim returns the explicit x limits, when both were set.
func (ax *Axes) XLim() (min, max float64, ok bool) {
	return ax.x.min, ax.x.max, ax.x.hasMin && ax.x.hasMax
}

func (ax *Axes) YLim() (min, max float64, ok bool) {
	return ax.y.min, ax.y.max, ax.y.hasMin && ax.y.hasMax
}

func (ax *Axes) ZLim() (min, max float64, ok bool) {
	return ax.z.min, ax.z.max, ax.z.hasMin && ax.z.hasMax
}

func (ax *Axes) Labels() (x, y, z string) { return ax.x.label, ax.y.label, ax.z.label }

func (ax *Axes) Scales() (x, y, z string) { return ax.x.scale, ax.y.scale, ax.z.scale }

func (ax *Axes) addPlotter(p plot.Plotter, label string) {
	ax.plotters = append(ax.plotters, p)
	if label == "" {
		return
	}
	if t, ok := p.(plot.Thumbnailer); ok {
		ax.entries = append(ax.entries, legendEntry{label: label, thumbs: []plot.Thumbnailer{t}})
	}
}

// NewAxes2D adds a 2D subplot at pos, replacing any subplot already there.
// sharex and sharey link the limits of the new axes to existing ones.
func (v *Visualization) NewAxes2D(pos string, sharex, sharey *Axes) (*Axes, error) {
	p, err := ParsePosition(pos)
	if err != nil {
		return nil, err
	}
	ax := v.addAxes(p, false)
	ax.sharex = sharex
	ax.sharey = sharey
	return ax, nil
}

// NewAxes3D adds a 3D subplot at pos, replacing any subplot already there.
func (v *Visualization) NewAxes3D(pos string) (*Axes, error) {
	p, err := ParsePosition(pos)
	if err != nil {
		return nil, err
	}
	return v.addAxes(p, true), nil
}

func (v *Visualization) addAxes(p Position, threeD bool) *Axes {
	ax := &Axes{
		fig:    v,
		pos:    p,
		threeD: threeD,
		x:      axisState{scale: ScaleLinear},
		y:      axisState{scale: ScaleLinear},
		z:      axisState{scale: ScaleLinear},
	}

	kept := v.axes[:0]
	for _, old := range v.axes {
		if old.pos != p {
			kept = append(kept, old)
			continue
		}
		v.logger.WithField("pos", p.String()).Debug("Replacing subplot")
		if v.current == old {
			v.current = nil
		}
	}
	v.axes = append(kept, ax)
	v.current = ax
	return ax
}

// subplot returns the 2D axes at pos, creating it when needed.
func (v *Visualization) subplot(pos string) (*Axes, error) {
	p, err := ParsePosition(pos)
	if err != nil {
		return nil, err
	}
	for _, ax := range v.axes {
		if ax.pos == p && !ax.threeD {
			v.current = ax
			return ax, nil
		}
	}
	return v.addAxes(p, false), nil
}

// subplot3D is subplot for 3D axes.
func (v *Visualization) subplot3D(pos string) (*Axes, error) {
	p, err := ParsePosition(pos)
	if err != nil {
		return nil, err
	}
	for _, ax := range v.axes {
		if ax.pos == p && ax.threeD {
			v.current = ax
			return ax, nil
		}
	}
	return v.addAxes(p, true), nil
}

// gca returns the current axes, creating a default subplot if none exists.
func (v *Visualization) gca() (*Axes, error) {
	if v.current != nil {
		return v.current, nil
	}
	return v.subplot(DefaultPos)
}

type span struct {
	min, max float64
	ok       bool
}

func (s span) union(o span) span {
	switch {
	case !s.ok:
		return o
	case !o.ok:
		return s
	}
	return span{min: math.Min(s.min, o.min), max: math.Max(s.max, o.max), ok: true}
}

// dataRange is the union of the ranges of every plotter on the axes, in
// data coordinates.
func (ax *Axes) dataRange() (x, y span) {
	for _, p := range ax.plotters {
		dr, ok := p.(plot.DataRanger)
		if !ok {
			continue
		}
		xmin, xmax, ymin, ymax := dr.DataRange()
		if ax.image && isImageLayer(p) {
			ymin, ymax = -ymax, -ymin
		}
		x = x.union(finite(xmin, xmax))
		y = y.union(finite(ymin, ymax))
	}
	return x, y
}

func finite(min, max float64) span {
	if math.IsInf(min, 0) || math.IsInf(max, 0) || math.IsNaN(min) || math.IsNaN(max) {
		return span{}
	}
	return span{min: min, max: max, ok: true}
}

// viewLimits returns the limits an axis currently shows: explicit limits
// where set, the data range elsewhere.
func (ax *Axes) viewLimits() (x, y span) {
	dx, dy := ax.dataRange()
	return ax.x.view(dx, false), ax.y.view(dy, false)
}

// view combines data range, margins and explicit limits.
func (a axisState) view(data span, margins bool) span {
	s := data
	if s.ok && margins {
		s = a.pad(s)
	}
	if a.hasMin {
		s.min = a.min
	}
	if a.hasMax {
		s.max = a.max
	}
	if !data.ok {
		if !a.hasMin && !a.hasMax {
			return span{}
		}
		if !a.hasMin {
			s.min = s.max
		}
		if !a.hasMax {
			s.max = s.min
		}
	}
	s.ok = true
	return s
}

func (a axisState) pad(s span) span {
	if a.log() && s.min > 0 && s.max > 0 {
		lo, hi := math.Log10(s.min), math.Log10(s.max)
		d := (hi - lo) * axisMargin
		return span{min: math.Pow(10, lo-d), max: math.Pow(10, hi+d), ok: true}
	}
	d := (s.max - s.min) * axisMargin
	return span{min: s.min - d, max: s.max + d, ok: true}
}

// ranges returns the final x and y ranges of a 2D axes in plot
// coordinates. Image axes draw y negated, see imageGrid.
func (ax *Axes) ranges() (x, y span) {
	dx, dy := ax.dataRange()
	if !ax.image {
		return ax.x.view(dx, true), ax.y.view(dy, true)
	}
	y = ax.y.view(dy, false)
	if y.ok {
		y.min, y.max = -y.max, -y.min
	}
	return ax.x.view(dx, false), y
}

// layers returns the plotters to draw. On image axes everything but the
// images is wrapped so that its y values follow the row direction.
func (ax *Axes) layers() []plot.Plotter {
	if !ax.image {
		return ax.plotters
	}
	out := make([]plot.Plotter, len(ax.plotters))
	for i, p := range ax.plotters {
		if isImageLayer(p) {
			out[i] = p
			continue
		}
		out[i] = &rowFlip{Plotter: p}
	}
	return out
}

func isImageLayer(p plot.Plotter) bool {
	_, ok := p.(*plotter.HeatMap)
	return ok
}

// rowFlip draws a plotter on an axes whose y coordinates are negated.
type rowFlip struct {
	plot.Plotter
}

func (f *rowFlip) Plot(c draw.Canvas, plt *plot.Plot) {
	flipped := *plt
	flipped.Y.Scale = negatedScale{flipped.Y.Scale}
	f.Plotter.Plot(c, &flipped)
}

func (f *rowFlip) DataRange() (xmin, xmax, ymin, ymax float64) {
	dr, ok := f.Plotter.(plot.DataRanger)
	if !ok {
		return math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	}
	xmin, xmax, ymin, ymax = dr.DataRange()
	return xmin, xmax, -ymax, -ymin
}

type negatedScale struct {
	plot.Normalizer
}

func (n negatedScale) Normalize(min, max, x float64) float64 {
	return n.Normalizer.Normalize(min, max, -x)
}

func applyScale(a *plot.Axis, st axisState, name string) error {
	if !st.log() {
		return nil
	}
	if a.Min > a.Max {
		a.Min, a.Max = 1, 10
	}
	if a.Min <= 0 || a.Max <= 0 {
		return fmt.Errorf("log scale on %s axis needs positive limits, got [%g, %g]", name, a.Min, a.Max)
	}
	a.Scale = plot.LogScale{}
	a.Tick.Marker = plot.LogTicks{Prec: -1}
	return nil
}

// build assembles the gonum plot of a 2D axes for the given ranges.
func (ax *Axes) build(x, y span) (*plot.Plot, error) {
	p := plot.New()
	p.X.Padding, p.Y.Padding = 0, 0
	p.Title.Text = ax.title

	if ax.grid != nil {
		p.Add(&background{color: ax.grid.background})
		g := plotter.NewGrid()
		g.Vertical = ax.grid.line
		g.Horizontal = ax.grid.line
		p.Add(g)
	}
	p.Add(ax.layers()...)

	spine := draw.LineStyle{Color: color.Black, Width: vg.Points(0.8)}
	if ax.spineColor != nil {
		spine.Color = ax.spineColor
	}
	p.Add(&frame{style: spine})
	p.X.LineStyle = spine
	p.Y.LineStyle = spine

	if x.ok {
		p.X.Min, p.X.Max = x.min, x.max
	}
	if y.ok {
		p.Y.Min, p.Y.Max = y.min, y.max
	}
	if ax.image {
		p.Y.Tick.Marker = flippedTicks{}
	}
	if err := applyScale(&p.X, ax.x, "x"); err != nil {
		return nil, err
	}
	if err := applyScale(&p.Y, ax.y, "y"); err != nil {
		return nil, err
	}

	p.X.Label.Text = ax.x.label
	p.Y.Label.Text = ax.y.label
	ax.styleAxis(&p.X)
	ax.styleAxis(&p.Y)
	if ax.axisColor != nil {
		p.Title.TextStyle.Color = ax.axisColor
	}
	if ax.labelFontSize > 0 {
		p.Title.TextStyle.Font.Size = vg.Points(ax.labelFontSize)
	}
	return p, nil
}

func (ax *Axes) styleAxis(a *plot.Axis) {
	if ax.axisColor != nil {
		a.Label.TextStyle.Color = ax.axisColor
		a.Tick.Label.Color = ax.axisColor
		a.Tick.Color = ax.axisColor
	}
	if ax.labelFontSize > 0 {
		a.Label.TextStyle.Font.Size = vg.Points(ax.labelFontSize)
	}
	if ax.tickFontSize > 0 {
		a.Tick.Label.Font.Size = vg.Points(ax.tickFontSize)
	}
	a.Tick.Length = vg.Points(3.5)
}

// draw renders the axes into its cell of the figure.
func (ax *Axes) draw(cell draw.Canvas, x, y span) error {
	var (
		p   *plot.Plot
		err error
	)
	if ax.threeD {
		p, err = ax.build3D()
	} else {
		p, err = ax.build(x, y)
	}
	if err != nil {
		return err
	}
	p.BackgroundColor = nil

	area := draw.Crop(cell, cellPadding, -cellPadding, cellPadding, -cellPadding)
	if ax.threeD {
		area = square(area)
	}

	// the title goes above any top twin axis
	title := p.Title.Text
	if title != "" && ax.hasTwin("x") {
		p.Title.Text = ""
		area.Max.Y -= p.Title.TextStyle.Rectangle(title).Size().Y + p.Title.Padding
	}
	area = ax.reserveTwins(area, p)

	p.Draw(area)
	dataC := p.DataCanvas(area)

	for _, tw := range ax.twins {
		if err := tw.draw(dataC, p); err != nil {
			return err
		}
	}
	if title != "" && p.Title.Text == "" {
		descent := p.Title.TextStyle.FontExtents().Descent
		top := vg.Point{X: area.Center().X, Y: cell.Max.Y - cellPadding + descent}
		cell.FillText(p.Title.TextStyle, top, title)
	}
	if ax.legend != nil && len(ax.entries) > 0 {
		ax.drawLegend(dataC)
	}
	return nil
}

func (ax *Axes) hasTwin(axis string) bool {
	for _, tw := range ax.twins {
		if tw.axis == axis {
			return true
		}
	}
	return false
}

// square returns the largest centred square inside c.
func square(c draw.Canvas) draw.Canvas {
	w, h := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	if w > h {
		d := (w - h) / 2
		return draw.Crop(c, d, -d, 0, 0)
	}
	d := (h - w) / 2
	return draw.Crop(c, 0, 0, d, -d)
}

var cellPadding = vg.Points(8)

type background struct {
	color color.Color
}

func (b *background) Plot(c draw.Canvas, _ *plot.Plot) {
	if b.color == nil {
		return
	}
	c.SetColor(b.color)
	c.Fill(c.Rectangle.Path())
}

// frame draws all four spines around the data area.
type frame struct {
	style draw.LineStyle
}

func (f *frame) Plot(c draw.Canvas, _ *plot.Plot) {
	c.StrokeLines(f.style, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Min.Y},
	})
}
