package vis

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// arrow is a shaft from (x, y) to (x+dx, y+dy) followed by a triangular
// head of headLength beyond the end point. Sizes are in data units.
type arrow struct {
	x, y, dx, dy          float64
	headWidth, headLength float64
	color                 color.Color
}

// outline returns the shaft end points and the head triangle in data space.
func (a *arrow) outline() (shaft [2][2]float64, head [][2]float64) {
	ex, ey := a.x+a.dx, a.y+a.dy
	shaft = [2][2]float64{{a.x, a.y}, {ex, ey}}

	l := math.Hypot(a.dx, a.dy)
	if l == 0 {
		return shaft, nil
	}
	ux, uy := a.dx/l, a.dy/l
	px, py := -uy, ux
	hw := a.headWidth / 2
	head = [][2]float64{
		{ex + px*hw, ey + py*hw},
		{ex + ux*a.headLength, ey + uy*a.headLength},
		{ex - px*hw, ey - py*hw},
	}
	return shaft, head
}

func (a *arrow) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	shaft, head := a.outline()

	sty := draw.LineStyle{Color: a.color, Width: vg.Points(1)}
	line := []vg.Point{
		{X: trX(shaft[0][0]), Y: trY(shaft[0][1])},
		{X: trX(shaft[1][0]), Y: trY(shaft[1][1])},
	}
	c.StrokeLines(sty, c.ClipLinesXY(line)...)

	if head == nil {
		return
	}
	pts := make([]vg.Point, len(head))
	for i, p := range head {
		pts[i] = vg.Point{X: trX(p[0]), Y: trY(p[1])}
	}
	c.FillPolygon(a.color, c.ClipPolygonXY(pts))
}

func (a *arrow) DataRange() (xmin, xmax, ymin, ymax float64) {
	shaft, head := a.outline()
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, p := range append(shaft[:], head...) {
		xmin, xmax = math.Min(xmin, p[0]), math.Max(xmax, p[0])
		ymin, ymax = math.Min(ymin, p[1]), math.Max(ymax, p[1])
	}
	return xmin, xmax, ymin, ymax
}

func (a *arrow) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	x0, x1 := c.Min.X, c.Max.X
	h := (c.Max.Y - c.Min.Y) / 4
	c.StrokeLine2(draw.LineStyle{Color: a.color, Width: vg.Points(1)}, x0, y, x1-h, y)
	c.FillPolygon(a.color, []vg.Point{
		{X: x1 - h, Y: y + h},
		{X: x1, Y: y},
		{X: x1 - h, Y: y - h},
	})
}
