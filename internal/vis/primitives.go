package vis

import (
	"fmt"
	"image/color"
	"math"

	"myvis/internal/colordict"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func xyPoints(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y must have the same length, got %d and %d", len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts, nil
}

// seriesLine builds the line style of a series from its merged parameters.
func (v *Visualization) seriesLine(params Args) (draw.LineStyle, error) {
	c, err := v.paramColor(params, "color")
	if err != nil {
		return draw.LineStyle{}, err
	}
	return lineStyle(params.String("linestyle", "solid"), params.Float("linewidth", 1), c)
}

// Plot draws ys against xs as a line.
func (v *Visualization) Plot(xs, ys []float64, pos string, ax *Axes, args Args) error {
	ax, params, err := v.begin("plot", pos, ax, false, args)
	if err != nil {
		return err
	}

	pts, err := xyPoints(xs, ys)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if line.LineStyle, err = v.seriesLine(params); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	ax.addPlotter(line, params.String("label", ""))

	return v.decorate(ax, args)
}

type errorPoints struct {
	plotter.XYs
	plotter.XErrors
	plotter.YErrors
}

func symmetric(errs []float64) plotter.Errors {
	out := make(plotter.Errors, len(errs))
	for i, e := range errs {
		e = math.Abs(e)
		out[i].Low, out[i].High = e, e
	}
	return out
}

// Errorbar draws a line with optional x and y error bars. With shaded set,
// the band between y-yerr and y+yerr is filled with shadedcolor.
func (v *Visualization) Errorbar(xs, ys, xerrs, yerrs []float64, pos string, ax *Axes, args Args) error {
	ax, params, err := v.begin("errorbar", pos, ax, false, args)
	if err != nil {
		return err
	}

	pts, err := xyPoints(xs, ys)
	if err != nil {
		return fmt.Errorf("errorbar: %w", err)
	}
	if xerrs != nil && len(xerrs) != len(xs) {
		return fmt.Errorf("errorbar: xerrs must have %d values, got %d", len(xs), len(xerrs))
	}
	if yerrs != nil && len(yerrs) != len(ys) {
		return fmt.Errorf("errorbar: yerrs must have %d values, got %d", len(ys), len(yerrs))
	}

	if yerrs != nil && args.Bool("shaded", false) {
		band, err := v.shadedBand(pts, yerrs, params, args)
		if err != nil {
			return fmt.Errorf("errorbar: %w", err)
		}
		ax.addPlotter(band, "")
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("errorbar: %w", err)
	}
	if line.LineStyle, err = v.seriesLine(params); err != nil {
		return fmt.Errorf("errorbar: %w", err)
	}

	ecolor, err := toColor(params["ecolor"])
	if err != nil {
		return fmt.Errorf("errorbar: ecolor: %w", err)
	}
	barStyle := draw.LineStyle{Color: ecolor, Width: line.LineStyle.Width}
	if barStyle.Width == 0 {
		barStyle.Width = vg.Points(params.Float("linewidth", 1))
	}

	data := errorPoints{XYs: pts, XErrors: plotter.XErrors(symmetric(xerrs)), YErrors: plotter.YErrors(symmetric(yerrs))}
	if yerrs != nil {
		bars, err := plotter.NewYErrorBars(data)
		if err != nil {
			return fmt.Errorf("errorbar: %w", err)
		}
		bars.LineStyle = barStyle
		bars.CapWidth = 0
		ax.addPlotter(bars, "")
	}
	if xerrs != nil {
		bars, err := plotter.NewXErrorBars(data)
		if err != nil {
			return fmt.Errorf("errorbar: %w", err)
		}
		bars.LineStyle = barStyle
		bars.CapWidth = 0
		ax.addPlotter(bars, "")
	}
	ax.addPlotter(line, params.String("label", ""))

	return v.decorate(ax, args)
}

func (v *Visualization) shadedBand(pts plotter.XYs, yerrs []float64, params, args Args) (*plotter.Polygon, error) {
	shade := params["shadow"]
	if args.Has("shadedcolor") {
		shade = args["shadedcolor"]
	}
	c, err := toColor(shade)
	if err != nil {
		return nil, fmt.Errorf("shadedcolor: %w", err)
	}
	c = colordict.WithAlpha(c, args.Float("shadedalpha", 1.0))

	ring := make(plotter.XYs, 0, 2*len(pts))
	for i, p := range pts {
		ring = append(ring, plotter.XY{X: p.X, Y: p.Y - math.Abs(yerrs[i])})
	}
	for i := len(pts) - 1; i >= 0; i-- {
		ring = append(ring, plotter.XY{X: pts[i].X, Y: pts[i].Y + math.Abs(yerrs[i])})
	}

	band, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil, err
	}
	band.Color = c
	band.LineStyle = draw.LineStyle{}
	return band, nil
}

// imageGrid exposes a row-major matrix as a heat map grid. Rows are stored
// bottom-up on non-positive y so that row 0 sits at y=0 on top.
type imageGrid struct {
	rows [][]float64
	cols int
}

func newImageGrid(xys [][]float64) (*imageGrid, error) {
	if len(xys) == 0 || len(xys[0]) == 0 {
		return nil, fmt.Errorf("image needs a non-empty 2d grid")
	}
	cols := len(xys[0])
	for i, row := range xys {
		if len(row) != cols {
			return nil, fmt.Errorf("image row %d has %d values, want %d", i, len(row), cols)
		}
	}
	return &imageGrid{rows: xys, cols: cols}, nil
}

func (g *imageGrid) Dims() (c, r int)   { return g.cols, len(g.rows) }
func (g *imageGrid) Z(c, r int) float64 { return g.rows[len(g.rows)-1-r][c] }
func (g *imageGrid) X(c int) float64    { return float64(c) }
func (g *imageGrid) Y(r int) float64    { return float64(r - (len(g.rows) - 1)) }

func (g *imageGrid) extremes() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, row := range g.rows {
		for _, z := range row {
			if math.IsNaN(z) || math.IsInf(z, 0) {
				continue
			}
			min = math.Min(min, z)
			max = math.Max(max, z)
		}
	}
	return min, max
}

// Image draws a 2D grid as a heat map coloured with the scheme's colormap.
// vmin and vmax default to the grid extremes. Interpolation "none" draws
// vector cells, anything else rasterizes the grid.
func (v *Visualization) Image(xys [][]float64, pos string, ax *Axes, vmin, vmax *float64, interpolation string, args Args) error {
	ax, params, err := v.begin("image", pos, ax, false, args)
	if err != nil {
		return err
	}

	grid, err := newImageGrid(xys)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	lo, hi := grid.extremes()
	if vmin != nil {
		lo = *vmin
	}
	if vmax != nil {
		hi = *vmax
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return fmt.Errorf("image: grid has no finite values")
	}
	if lo > hi {
		return fmt.Errorf("image: vmin %v is greater than vmax %v", lo, hi)
	}
	if lo == hi {
		hi = lo + 1
	}

	pal := v.scheme.Colormap().Palette(255)
	colors := pal.Colors()
	hm := plotter.NewHeatMap(grid, pal)
	hm.Min, hm.Max = lo, hi
	hm.Underflow = colors[0]
	hm.Overflow = colors[len(colors)-1]
	hm.Rasterized = interpolation != "none"

	ax.image = true
	ax.addPlotter(hm, params.String("label", ""))

	v.logger.WithFields(logrus.Fields{
		"pos":  ax.pos.String(),
		"vmin": lo,
		"vmax": hi,
	}).Debug("Added image")

	return v.decorate(ax, args)
}

// markerGlyph returns a circle of area s (pt^2). A zero area has no shape
// and draws nothing.
func markerGlyph(c color.Color, s float64) (draw.GlyphStyle, error) {
	if s < 0 || math.IsNaN(s) {
		return draw.GlyphStyle{}, fmt.Errorf("marker size must not be negative, got %v", s)
	}
	g := draw.GlyphStyle{Color: c, Radius: vg.Points(math.Sqrt(s) / 2)}
	if s > 0 {
		g.Shape = draw.CircleGlyph{}
	}
	return g, nil
}

// Scatter draws circles of area s (pt^2) at the given points. The axes
// limits grow to include xmin..xmax and ymin..ymax, which default to the
// data extremes. A zero s still widens the limits but draws no markers.
func (v *Visualization) Scatter(xs, ys []float64, pos string, ax *Axes, s float64, args Args) error {
	ax, params, err := v.begin("scatter", pos, ax, false, args)
	if err != nil {
		return err
	}
	c, err := v.paramColor(params, "color")
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	glyph, err := markerGlyph(c, s)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}

	pts, err := xyPoints(xs, ys)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	sc.GlyphStyle = glyph

	v.widenLimits(ax, xs, ys, args)
	ax.addPlotter(sc, params.String("label", ""))

	if err := v.setScales(ax, args); err != nil {
		return err
	}
	v.setLabels(ax, args)
	v.setAxisColor(ax)
	v.styleSpines(ax)
	v.setArea(ax, args)
	return nil
}

func (v *Visualization) widenLimits(ax *Axes, xs, ys []float64, args Args) {
	curX, curY := ax.viewLimits()

	widen := func(vals []float64, prefix string, cur span) span {
		lo, hi := extent(vals)
		lo = args.Float(prefix+"min", lo)
		hi = args.Float(prefix+"max", hi)
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return cur
		}
		return cur.union(span{min: lo, max: hi, ok: true})
	}

	if x := widen(xs, "x", curX); x.ok {
		ax.x.setLimits(x.min, x.max)
	}
	if y := widen(ys, "y", curY); y.ok {
		ax.y.setLimits(y.min, y.max)
	}
}

func extent(vals []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, x := range vals {
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	return min, max
}

// Arrow draws an arrow from (xi, yi) to (xf, yf). head_width and
// head_length are in data units.
func (v *Visualization) Arrow(xi, yi, xf, yf float64, pos string, ax *Axes, args Args) error {
	ax, params, err := v.begin("arrow", pos, ax, false, args)
	if err != nil {
		return err
	}

	c, err := v.paramColor(params, "color")
	if err != nil {
		return fmt.Errorf("arrow: %w", err)
	}
	a := &arrow{
		x: xi, y: yi,
		dx: xf - xi, dy: yf - yi,
		headWidth:  params.Float("head_width", 0.05),
		headLength: params.Float("head_length", 0.1),
		color:      c,
	}
	if a.headWidth < 0 || a.headLength < 0 {
		return fmt.Errorf("arrow: head size must not be negative")
	}
	ax.addPlotter(a, params.String("label", ""))

	return v.decorate(ax, args)
}
