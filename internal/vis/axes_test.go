package vis

import (
	"math"
	"strconv"
	"testing"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func TestParsePosition_Digits(t *testing.T) {
	p, err := ParsePosition("212")
	if err != nil {
		t.Fatalf("ParsePosition failed: %v", err)
	}
	if p != (Position{Rows: 2, Cols: 1, Index: 2}) {
		t.Fatalf("unexpected position %+v", p)
	}
	if p.String() != "212" {
		t.Fatalf("expected 212, got %s", p.String())
	}
}

func TestParsePosition_Commas(t *testing.T) {
	p, err := ParsePosition("3, 4, 12")
	if err != nil {
		t.Fatalf("ParsePosition failed: %v", err)
	}
	if p.Index != 12 || p.String() != "3,4,12" {
		t.Fatalf("unexpected position %+v", p)
	}
}

func TestParsePosition_DefaultsAndErrors(t *testing.T) {
	p, err := ParsePosition("")
	if err != nil || p.String() != DefaultPos {
		t.Fatalf("expected default position, got %+v (%v)", p, err)
	}
	for _, bad := range []string{"11", "1111", "abc", "115", "011", "2,2"} {
		if _, err := ParsePosition(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestPosition_Cell(t *testing.T) {
	c := draw.Canvas{Rectangle: vg.Rectangle{Max: vg.Point{X: 200, Y: 100}}}
	cell := Position{Rows: 2, Cols: 2, Index: 3}.cell(c)
	if cell.Min.X != 0 || cell.Max.X != 100 || cell.Min.Y != 0 || cell.Max.Y != 50 {
		t.Fatalf("unexpected cell %+v", cell.Rectangle)
	}
	cell = Position{Rows: 2, Cols: 2, Index: 2}.cell(c)
	if cell.Min.X != 100 || cell.Min.Y != 50 {
		t.Fatalf("unexpected cell %+v", cell.Rectangle)
	}
}

func TestNewAxes_ReplacesPosition(t *testing.T) {
	v := newTestVis(t)
	a, _ := v.NewAxes2D("121", nil, nil)
	b, _ := v.NewAxes2D("122", nil, nil)
	c, err := v.NewAxes3D("121")
	if err != nil {
		t.Fatalf("NewAxes3D failed: %v", err)
	}

	axes := v.Axes()
	if len(axes) != 2 || axes[0] != b || axes[1] != c {
		t.Fatalf("expected 3d axes to replace %v", a.Position())
	}
	if !c.Is3D() || v.Current() != c {
		t.Fatalf("expected current 3d axes")
	}
}

func TestSubplot_ReplacesOtherKind(t *testing.T) {
	v := newTestVis(t)
	ax3, _ := v.NewAxes3D("111")
	ax, err := v.subplot("111")
	if err != nil {
		t.Fatalf("subplot failed: %v", err)
	}
	if ax == ax3 || ax.Is3D() {
		t.Fatalf("expected a new 2d axes")
	}
	again, _ := v.subplot("111")
	if again != ax {
		t.Fatalf("expected subplot to be reused")
	}
}

func TestAxisView_Margins(t *testing.T) {
	a := axisState{scale: ScaleLinear}
	s := a.view(span{min: 0, max: 10, ok: true}, true)
	if s.min != -0.5 || s.max != 10.5 {
		t.Fatalf("expected [-0.5, 10.5], got [%v, %v]", s.min, s.max)
	}

	a.hasMax, a.max = true, 20
	s = a.view(span{min: 0, max: 10, ok: true}, true)
	if s.min != -0.5 || s.max != 20 {
		t.Fatalf("expected [-0.5, 20], got [%v, %v]", s.min, s.max)
	}
}

func TestAxisView_LogMargins(t *testing.T) {
	a := axisState{scale: ScaleLog}
	s := a.view(span{min: 1, max: 100, ok: true}, true)
	if math.Abs(math.Log10(s.min)+0.1) > 1e-9 || math.Abs(math.Log10(s.max)-2.1) > 1e-9 {
		t.Fatalf("unexpected log margins [%v, %v]", s.min, s.max)
	}
}

func TestAxisView_NoData(t *testing.T) {
	a := axisState{}
	if s := a.view(span{}, true); s.ok {
		t.Fatalf("expected no range without data or limits")
	}
	a.hasMin, a.min = true, 3
	s := a.view(span{}, true)
	if !s.ok || s.min != 3 || s.max != 3 {
		t.Fatalf("unexpected range %+v", s)
	}
}

func TestSharedRanges_Union(t *testing.T) {
	v := newTestVis(t)
	top, _ := v.NewAxes2D("211", nil, nil)
	bottom, _ := v.NewAxes2D("212", top, nil)
	if err := v.Plot([]float64{0, 10}, []float64{0, 1}, "", top, Args{"silent": true}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if err := v.Plot([]float64{-10, 0}, []float64{5, 6}, "", bottom, Args{"silent": true}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	xr, yr := v.sharedRanges()
	if xr[top] != xr[bottom] {
		t.Fatalf("expected shared x ranges, got %+v and %+v", xr[top], xr[bottom])
	}
	if xr[top].min != -10.5 || xr[top].max != 10.5 {
		t.Fatalf("unexpected shared range %+v", xr[top])
	}
	if yr[top] == yr[bottom] {
		t.Fatalf("y ranges should stay independent")
	}
}

func TestSharedRanges_Chain(t *testing.T) {
	v := newTestVis(t)
	a, _ := v.NewAxes2D("131", nil, nil)
	b, _ := v.NewAxes2D("132", nil, nil)
	c, _ := v.NewAxes2D("133", nil, nil)
	a.sharex = b
	c.sharex = b
	for i, ax := range []*Axes{a, b, c} {
		x0 := float64(i * 10)
		if err := v.Plot([]float64{x0, x0 + 1}, []float64{0, 1}, "", ax, Args{"silent": true}); err != nil {
			t.Fatalf("Plot failed: %v", err)
		}
	}

	xr, _ := v.sharedRanges()
	if xr[a] != xr[b] || xr[b] != xr[c] {
		t.Fatalf("expected one x range, got %+v %+v %+v", xr[a], xr[b], xr[c])
	}
	if xr[a].min != -0.05 || math.Abs(xr[a].max-21.05) > 1e-9 {
		t.Fatalf("unexpected shared range %+v", xr[a])
	}
}

func TestFlippedTicks_LabelsRowIndices(t *testing.T) {
	ticks := flippedTicks{}.Ticks(-4.5, 0.5)
	labelled := 0
	for _, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		labelled++
		row, err := strconv.ParseFloat(tk.Label, 64)
		if err != nil {
			t.Fatalf("unexpected label %q", tk.Label)
		}
		if row != -tk.Value {
			t.Fatalf("tick at %v labelled %q", tk.Value, tk.Label)
		}
	}
	if labelled == 0 {
		t.Fatalf("expected labelled ticks")
	}
}

func TestLegendLoc(t *testing.T) {
	cases := map[string][2]float64{
		"upper right":  {1, 1},
		"lower left":   {0, 0},
		"center":       {0.5, 0.5},
		"right":        {1, 0.5},
		"upper center": {0.5, 1},
		"best":         {1, 1},
	}
	for loc, want := range cases {
		fx, fy, err := legendLoc(loc)
		if err != nil {
			t.Fatalf("legendLoc(%q) failed: %v", loc, err)
		}
		if fx != want[0] || fy != want[1] {
			t.Fatalf("legendLoc(%q) = %v, %v", loc, fx, fy)
		}
	}
	if _, _, err := legendLoc("somewhere"); err == nil {
		t.Fatalf("expected error for unknown location")
	}
}

func TestLegend_Options(t *testing.T) {
	v := newTestVis(t)
	if err := v.Legend("111", nil, DefaultLegendOptions()); err != nil {
		t.Fatalf("Legend failed: %v", err)
	}
	if v.Current().legend == nil {
		t.Fatalf("legend not stored")
	}
	opts := DefaultLegendOptions()
	opts.FontSize = "gigantic"
	if err := v.Legend("111", nil, opts); err == nil {
		t.Fatalf("expected font size error")
	}
	opts = DefaultLegendOptions()
	opts.FrameAlpha = 2
	if err := v.Legend("111", nil, opts); err == nil {
		t.Fatalf("expected frame alpha error")
	}
}

func TestSetGrid_UsesScheme(t *testing.T) {
	v := newTestVis(t, WithColorScheme("ICE"))
	if err := v.SetGrid(nil); err != nil {
		t.Fatalf("SetGrid failed: %v", err)
	}
	g := v.Current().grid
	if g == nil {
		t.Fatalf("grid not stored")
	}
	r, gg, b, _ := g.background.RGBA()
	if r>>8 != 0xf0 || gg>>8 != 0xf0 || b>>8 != 0xf0 {
		t.Fatalf("unexpected background %v", g.background)
	}
}

func TestCoaxis_Validation(t *testing.T) {
	v := newTestVis(t)
	if err := v.Coaxis([]float64{1, 2}, []string{"a"}, "", nil, CoaxisOptions{}, nil); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := v.Coaxis(nil, nil, "", nil, CoaxisOptions{Axis: "z"}, nil); err == nil {
		t.Fatalf("expected axis error")
	}
	ax3, _ := v.NewAxes3D("111")
	if err := v.Coaxis(nil, nil, "", ax3, CoaxisOptions{}, nil); err == nil {
		t.Fatalf("expected 3d error")
	}

	ax, _ := v.NewAxes2D("111", nil, nil)
	if err := v.Coaxis([]float64{1}, []string{"one"}, "top", ax, CoaxisOptions{Scale: "log"}, Args{"silent": true}); err != nil {
		t.Fatalf("Coaxis failed: %v", err)
	}
	if len(ax.twins) != 1 || ax.twins[0].axis != "x" || !ax.twins[0].minor {
		t.Fatalf("unexpected twin %+v", ax.twins)
	}
}
