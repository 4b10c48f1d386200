package vis

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"myvis/internal/colordict"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	elevation = 30 * math.Pi / 180
	azimuth   = -60 * math.Pi / 180

	// half extent of the projected view, enough for the unit cube and its
	// tick labels
	viewExtent = 0.95

	minDepthAlpha = 0.3
)

type series3D struct {
	xs, ys, zs []float64
	line       *draw.LineStyle
	glyph      *draw.GlyphStyle
}

func (s *series3D) Thumbnail(c *draw.Canvas) {
	if s.line != nil {
		y := c.Center().Y
		c.StrokeLine2(*s.line, c.Min.X, y, c.Max.X, y)
		return
	}
	c.DrawGlyph(*s.glyph, c.Center())
}

func (s *series3D) extents() (x, y, z span) {
	x = finite(extent(s.xs))
	y = finite(extent(s.ys))
	z = finite(extent(s.zs))
	return x, y, z
}

func checkXYZ(xs, ys, zs []float64) error {
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return fmt.Errorf("x, y and z must have the same length, got %d, %d and %d", len(xs), len(ys), len(zs))
	}
	return nil
}

// newSeries3D copies the coordinates, since series are only projected when
// the figure is drawn.
func newSeries3D(xs, ys, zs []float64, line *draw.LineStyle, glyph *draw.GlyphStyle) *series3D {
	return &series3D{
		xs:    append([]float64(nil), xs...),
		ys:    append([]float64(nil), ys...),
		zs:    append([]float64(nil), zs...),
		line:  line,
		glyph: glyph,
	}
}

// Plot3D draws a line through 3D points.
func (v *Visualization) Plot3D(xs, ys, zs []float64, pos string, ax *Axes, args Args) error {
	ax, params, err := v.begin("plot3d", pos, ax, true, args)
	if err != nil {
		return err
	}
	if err := checkXYZ(xs, ys, zs); err != nil {
		return fmt.Errorf("plot3d: %w", err)
	}

	sty, err := v.seriesLine(params)
	if err != nil {
		return fmt.Errorf("plot3d: %w", err)
	}
	ax.addSeries(newSeries3D(xs, ys, zs, &sty, nil), params.String("label", ""))

	return v.decorate(ax, args)
}

// Scatter3D draws circles of area s (pt^2) at 3D points. Limits of an axis
// are only applied when both its min and max are given.
func (v *Visualization) Scatter3D(xs, ys, zs []float64, pos string, ax *Axes, s float64, args Args) error {
	ax, params, err := v.begin("scatter3d", pos, ax, true, args)
	if err != nil {
		return err
	}
	if err := checkXYZ(xs, ys, zs); err != nil {
		return fmt.Errorf("scatter3d: %w", err)
	}

	c, err := v.paramColor(params, "color")
	if err != nil {
		return fmt.Errorf("scatter3d: %w", err)
	}
	glyph, err := markerGlyph(c, s)
	if err != nil {
		return fmt.Errorf("scatter3d: %w", err)
	}
	ax.addSeries(newSeries3D(xs, ys, zs, nil, &glyph), params.String("label", ""))

	v.setLabels(ax, args)
	for _, a := range []struct {
		state  *axisState
		prefix string
	}{{&ax.x, "x"}, {&ax.y, "y"}, {&ax.z, "z"}} {
		if args.Has(a.prefix+"min") && args.Has(a.prefix+"max") {
			a.state.setLimits(args.Float(a.prefix+"min", 0), args.Float(a.prefix+"max", 0))
		}
	}
	if err := v.setScales(ax, args); err != nil {
		return err
	}
	v.setAxisColor3D(ax)
	return nil
}

func (v *Visualization) setAxisColor3D(ax *Axes) {
	v.setAxisColor(ax)
}

func (ax *Axes) addSeries(s *series3D, label string) {
	ax.series = append(ax.series, s)
	if label != "" {
		ax.entries = append(ax.entries, legendEntry{label: label, thumbs: []plot.Thumbnailer{s}})
	}
}

// projection maps data coordinates into the unit cube centred on the
// origin and then orthographically onto the view plane.
type projection struct {
	lim  [3]span
	logs [3]bool
}

func (pr projection) norm(i int, v float64) float64 {
	lo, hi := pr.lim[i].min, pr.lim[i].max
	if pr.logs[i] {
		v, lo, hi = math.Log10(v), math.Log10(lo), math.Log10(hi)
	}
	if hi == lo {
		return v - lo
	}
	return (v-lo)/(hi-lo) - 0.5
}

// screen projects a point of the unit cube. depth grows towards the viewer.
func screen(x, y, z float64) (u, w, depth float64) {
	sa, ca := math.Sincos(azimuth)
	se, ce := math.Sincos(elevation)
	u = -x*sa + y*ca
	w = -x*ca*se - y*sa*se + z*ce
	depth = x*ca*ce + y*sa*ce + z*se
	return u, w, depth
}

func (pr projection) project(x, y, z float64) (u, w, depth float64) {
	return screen(pr.norm(0, x), pr.norm(1, y), pr.norm(2, z))
}

// limits3D returns the x, y and z ranges of a 3D axes.
func (ax *Axes) limits3D() (projection, error) {
	var data [3]span
	for _, s := range ax.series {
		x, y, z := s.extents()
		data[0] = data[0].union(x)
		data[1] = data[1].union(y)
		data[2] = data[2].union(z)
	}

	var pr projection
	for i, st := range []axisState{ax.x, ax.y, ax.z} {
		s := st.view(data[i], true)
		if !s.ok {
			s = span{min: 0, max: 1, ok: true}
			if st.log() {
				s = span{min: 1, max: 10, ok: true}
			}
		}
		if s.min > s.max {
			s.min, s.max = s.max, s.min
		}
		if s.min == s.max {
			if st.log() {
				s.min, s.max = s.min/10, s.max*10
			} else {
				s.min, s.max = s.min-0.5, s.max+0.5
			}
		}
		if st.log() && s.min <= 0 {
			return pr, fmt.Errorf("log scale on %s axis needs positive limits, got [%g, %g]", "xyz"[i:i+1], s.min, s.max)
		}
		pr.lim[i] = s
		pr.logs[i] = st.log()
	}
	return pr, nil
}

func (ax *Axes) build3D() (*plot.Plot, error) {
	pr, err := ax.limits3D()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.HideAxes()
	p.Title.Text = ax.title
	p.X.Min, p.X.Max = -viewExtent, viewExtent
	p.Y.Min, p.Y.Max = -viewExtent, viewExtent

	box := &box3D{proj: pr, axes: ax}
	p.Add(box)
	for _, s := range ax.series {
		pl, err := s.plotter(pr)
		if err != nil {
			return nil, err
		}
		p.Add(pl)
	}

	if ax.axisColor != nil {
		p.Title.TextStyle.Color = ax.axisColor
	}
	if ax.labelFontSize > 0 {
		p.Title.TextStyle.Font.Size = vg.Points(ax.labelFontSize)
	}
	return p, nil
}

func (s *series3D) plotter(pr projection) (plot.Plotter, error) {
	pts := make([]projected, len(s.xs))
	for i := range s.xs {
		u, w, d := pr.project(s.xs[i], s.ys[i], s.zs[i])
		pts[i] = projected{u: u, w: w, depth: d}
	}

	if s.line != nil {
		xys := make(plotter.XYs, len(pts))
		for i, p := range pts {
			xys[i].X, xys[i].Y = p.u, p.w
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle = *s.line
		return line, nil
	}
	return &depthScatter{pts: pts, glyph: *s.glyph}, nil
}

type projected struct {
	u, w, depth float64
}

// depthScatter draws projected glyphs back to front, fading the ones
// further away.
type depthScatter struct {
	pts   []projected
	glyph draw.GlyphStyle
}

func (d *depthScatter) Plot(c draw.Canvas, plt *plot.Plot) {
	if len(d.pts) == 0 {
		return
	}
	trX, trY := plt.Transforms(&c)

	pts := make([]projected, len(d.pts))
	copy(pts, d.pts)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].depth < pts[j].depth })

	near, far := pts[len(pts)-1].depth, pts[0].depth
	_, _, _, a := d.glyph.Color.RGBA()
	base := float64(a) / 0xffff

	for _, p := range pts {
		sty := d.glyph
		sty.Color = colordict.WithAlpha(sty.Color, base*depthAlpha(p.depth, near, far))
		c.DrawGlyph(sty, vg.Point{X: trX(p.u), Y: trY(p.w)})
	}
}

func depthAlpha(depth, near, far float64) float64 {
	if near == far {
		return 1
	}
	return minDepthAlpha + (1-minDepthAlpha)*(depth-far)/(near-far)
}

// box3D draws the back panes, the edges and the ticks of a 3D axes.
type box3D struct {
	proj projection
	axes *Axes
}

// axisEdges places each axis along an edge of the unit cube: the edge is
// given by the fixed coordinates of the two other axes, as signs relative
// to the viewer (+1 near, -1 far).
var axisEdges = [3][3]float64{
	{0, 1, -1},
	{1, 0, -1},
	{-1, 1, 0},
}

func (b *box3D) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	toCanvas := func(x, y, z float64) vg.Point {
		u, w, _ := screen(x, y, z)
		return vg.Point{X: trX(u), Y: trY(w)}
	}

	ax := b.axes
	fg := color.Color(color.Black)
	if ax.axisColor != nil {
		fg = ax.axisColor
	}
	bg := color.Color(color.White)
	if ax.grid != nil && ax.grid.background != nil {
		bg = ax.grid.background
	}
	pane := colordict.Blend(bg, fg, 0.08)
	edge := draw.LineStyle{Color: fg, Width: vg.Points(0.8)}
	if ax.spineColor != nil {
		edge.Color = ax.spineColor
	}

	// far side of the cube along every axis
	var far [3]float64
	for i := range far {
		var dir [3]float64
		dir[i] = 1
		_, _, d := screen(dir[0], dir[1], dir[2])
		far[i] = -0.5
		if d < 0 {
			far[i] = 0.5
		}
	}
	near := [3]float64{-far[0], -far[1], -far[2]}

	for i := 0; i < 3; i++ {
		j, k := (i+1)%3, (i+2)%3
		corners := [][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
		pts := make([]vg.Point, 0, 5)
		for _, cr := range corners {
			var p [3]float64
			p[i], p[j], p[k] = far[i], cr[0], cr[1]
			pts = append(pts, toCanvas(p[0], p[1], p[2]))
		}
		c.FillPolygon(pane, pts)
		pts = append(pts, pts[0])
		c.StrokeLines(edge, pts)
	}

	tickSty := plt.X.Tick.Label
	tickSty.Color = fg
	if ax.tickFontSize > 0 {
		tickSty.Font.Size = vg.Points(ax.tickFontSize)
	}
	tickSty.XAlign, tickSty.YAlign = draw.XCenter, draw.YCenter
	labelSty := plt.X.Label.TextStyle
	labelSty.Color = fg
	if ax.labelFontSize > 0 {
		labelSty.Font.Size = vg.Points(ax.labelFontSize)
	}
	labelSty.XAlign, labelSty.YAlign = draw.XCenter, draw.YCenter
	tickLine := draw.LineStyle{Color: fg, Width: vg.Points(0.8)}

	labels := [3]string{ax.x.label, ax.y.label, ax.z.label}
	for i := 0; i < 3; i++ {
		var base [3]float64
		for j := 0; j < 3; j++ {
			switch axisEdges[i][j] {
			case 1:
				base[j] = near[j]
			case -1:
				base[j] = far[j]
			}
		}

		// outwards direction of the edge on screen
		mid := base
		mid[i] = 0
		ou, ow, _ := screen(mid[0], mid[1], mid[2])
		ol := math.Hypot(ou, ow)
		if ol == 0 {
			ol = 1
		}
		out := vg.Point{X: vg.Length(ou / ol), Y: vg.Length(ow / ol)}

		lim := b.proj.lim[i]
		for _, t := range ticksFor(lim, b.proj.logs[i]) {
			p := base
			p[i] = b.proj.norm(i, t.Value)
			if p[i] < -0.5-1e-9 || p[i] > 0.5+1e-9 {
				continue
			}
			at := toCanvas(p[0], p[1], p[2])
			tip := at.Add(out.Scale(vg.Points(4)))
			c.StrokeLine2(tickLine, at.X, at.Y, tip.X, tip.Y)
			if t.Label != "" {
				c.FillText(tickSty, at.Add(out.Scale(vg.Points(14))), t.Label)
			}
		}

		if labels[i] != "" {
			at := toCanvas(mid[0], mid[1], mid[2])
			c.FillText(labelSty, at.Add(out.Scale(vg.Points(36))), labels[i])
		}
	}
}

func ticksFor(lim span, log bool) []plot.Tick {
	if log {
		return plot.LogTicks{Prec: -1}.Ticks(lim.min, lim.max)
	}
	return plot.DefaultTicks{}.Ticks(lim.min, lim.max)
}
