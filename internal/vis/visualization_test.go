package vis

import (
	"math"
	"strings"
	"testing"

	"myvis/internal/colordict"
	"myvis/internal/logging"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/plot/plotter"
)

func newTestVis(t *testing.T, opts ...Option) *Visualization {
	t.Helper()
	v, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v
}

func TestFigAspect_Square(t *testing.T) {
	w, h := FigAspect(1)
	if w != 4.8 || h != 4.8 {
		t.Fatalf("expected 4.8x4.8, got %vx%v", w, h)
	}
}

func TestFigAspect_Wide(t *testing.T) {
	w, h := FigAspect(0.5)
	if math.Abs(w-9.6) > 1e-9 || math.Abs(h-4.8) > 1e-9 {
		t.Fatalf("expected 9.6x4.8, got %vx%v", w, h)
	}
}

func TestFigAspect_ClampsTall(t *testing.T) {
	w, h := FigAspect(10)
	if w < 4 || h > 16 {
		t.Fatalf("size %vx%v outside bounds", w, h)
	}
}

func TestNew_RejectsBadAspect(t *testing.T) {
	if _, err := New(WithAspect(0)); err == nil {
		t.Fatalf("expected error for zero aspect")
	}
	if _, err := New(WithFigSize(-1, 2)); err == nil {
		t.Fatalf("expected error for negative size")
	}
}

func TestNew_DefaultsFollowScheme(t *testing.T) {
	v := newTestVis(t, WithColorScheme("ICE"))
	ice := colordict.Get("ICE")

	defaults := v.Defaults()
	names := []string{"label", "color", "ecolor", "linestyle", "shadow", "alpha", "linewidth", "head_width", "head_length", "silent"}
	if len(defaults) != len(names) {
		t.Fatalf("expected %d defaults, got %d", len(names), len(defaults))
	}
	for i, d := range defaults {
		if d.Name != names[i] {
			t.Fatalf("default %d: expected %s, got %s", i, names[i], d.Name)
		}
	}
	if defaults[1].Value != ice.PrimaryColors[0] {
		t.Fatalf("unexpected default color %v", defaults[1].Value)
	}
	if defaults[2].Value != ice.HelperColors[0] {
		t.Fatalf("unexpected default ecolor %v", defaults[2].Value)
	}
	if defaults[4].Value != ice.PrimaryShadows[0] {
		t.Fatalf("unexpected default shadow %v", defaults[4].Value)
	}
	if defaults[5].Value != nil {
		t.Fatalf("alpha should default to nil")
	}
}

func TestNew_UnknownSchemeFallsBack(t *testing.T) {
	v := newTestVis(t, WithColorScheme("MISSING"))
	if v.Scheme().Name != colordict.DefaultScheme {
		t.Fatalf("expected fallback scheme, got %s", v.Scheme().Name)
	}
}

func TestGetParams_MergesArgs(t *testing.T) {
	v := newTestVis(t)
	params := v.getParams(Args{"color": "#000000", "linewidth": 3, "xlabel": "x"})

	if params["color"] != "#000000" {
		t.Fatalf("expected color override, got %v", params["color"])
	}
	if params.Float("linewidth", 0) != 3 {
		t.Fatalf("expected linewidth 3, got %v", params["linewidth"])
	}
	if params["linestyle"] != "solid" {
		t.Fatalf("expected default linestyle, got %v", params["linestyle"])
	}
	if params.Has("xlabel") {
		t.Fatalf("params should only carry default names")
	}
	if len(params) != len(v.Defaults()) {
		t.Fatalf("expected %d params, got %d", len(v.Defaults()), len(params))
	}
}

func TestArgs_Accessors(t *testing.T) {
	a := Args{"n": 2, "f": "1.5", "b": "true", "s": 3}
	if a.Float("n", 0) != 2 || a.Float("f", 0) != 1.5 || a.Float("missing", 7) != 7 {
		t.Fatalf("unexpected float conversion")
	}
	if !a.Bool("b", false) || a.Bool("missing", false) {
		t.Fatalf("unexpected bool conversion")
	}
	if a.String("s", "") != "3" {
		t.Fatalf("expected \"3\", got %q", a.String("s", ""))
	}
	keys := a.Keys()
	if keys[0] != "b" || keys[len(keys)-1] != "s" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}

func TestBegin_RejectsForeignAxes(t *testing.T) {
	v1 := newTestVis(t)
	v2 := newTestVis(t)
	ax, err := v1.NewAxes2D("111", nil, nil)
	if err != nil {
		t.Fatalf("NewAxes2D failed: %v", err)
	}
	if err := v2.Plot([]float64{1}, []float64{1}, "", ax, nil); err == nil {
		t.Fatalf("expected error for axes of another figure")
	}
}

func TestBegin_EchoesArgs(t *testing.T) {
	hook := logtest.NewLocal(logging.GetArgsLogger())
	defer hook.Reset()
	v := newTestVis(t)

	hook.Reset()
	if err := v.Plot([]float64{1, 2}, []float64{1, 2}, "", nil, Args{"color": "#000000", "label": "a"}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 argument entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != logrus.InfoLevel || e.Data["color"] != "#000000" || e.Data["label"] != "a" {
		t.Fatalf("unexpected entry %v %v", e.Level, e.Data)
	}
	if !strings.Contains(e.Message, `"plot"`) {
		t.Fatalf("expected primitive name in message, got %q", e.Message)
	}
}

func TestBegin_SilentAndEmptyArgs(t *testing.T) {
	hook := logtest.NewLocal(logging.GetArgsLogger())
	defer hook.Reset()
	v := newTestVis(t)

	hook.Reset()
	if err := v.Plot([]float64{1, 2}, []float64{1, 2}, "", nil, Args{"silent": true, "label": "a"}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if err := v.Plot([]float64{1, 2}, []float64{1, 2}, "", nil, Args{"silent": "yes"}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if err := v.Plot([]float64{1, 2}, []float64{1, 2}, "", nil, Args{}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if err := v.Plot([]float64{1, 2}, []float64{1, 2}, "", nil, nil); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if n := len(hook.AllEntries()); n != 0 {
		t.Fatalf("expected no argument entries, got %d", n)
	}
}

func TestArgs_BoolWords(t *testing.T) {
	a := Args{"y": "yes", "n": "No", "on": " on ", "off": "off", "bad": "maybe", "num": 1}
	if !a.Bool("y", false) || a.Bool("n", true) || !a.Bool("on", false) || a.Bool("off", true) {
		t.Fatalf("unexpected bool words")
	}
	if !a.Bool("bad", true) || a.Bool("num", false) {
		t.Fatalf("unreadable values should fall back to the default")
	}
}

func TestBegin_RejectsMistypedArgs(t *testing.T) {
	v := newTestVis(t)
	xs := []float64{1, 2}
	if err := v.Plot(xs, xs, "", nil, Args{"xmin": "abc", "silent": true}); err == nil || !strings.Contains(err.Error(), "xmin") {
		t.Fatalf("expected xmin error, got %v", err)
	}
	if err := v.Plot(xs, xs, "", nil, Args{"silent": "maybe"}); err == nil || !strings.Contains(err.Error(), "silent") {
		t.Fatalf("expected silent error, got %v", err)
	}
	if err := v.Errorbar(xs, xs, nil, xs, "", nil, Args{"shaded": "sometimes", "silent": true}); err == nil {
		t.Fatalf("expected shaded error")
	}
	if err := v.Coaxis([]float64{1}, []string{"a"}, "", nil, CoaxisOptions{}, Args{"linewidth": "thick"}); err == nil {
		t.Fatalf("expected linewidth error")
	}
	if err := v.Plot(xs, xs, "", nil, Args{"xmin": "0.5", "alpha": nil, "silent": "off"}); err != nil {
		t.Fatalf("numeric strings and nil values should pass: %v", err)
	}
}

func TestErrorbar_ShadedWord(t *testing.T) {
	v := newTestVis(t)
	err := v.Errorbar([]float64{0, 1}, []float64{1, 2}, nil, []float64{0.5, 0.5}, "", nil, Args{"shaded": "yes", "silent": true})
	if err != nil {
		t.Fatalf("Errorbar failed: %v", err)
	}
	if _, ok := v.Current().plotters[0].(*plotter.Polygon); !ok {
		t.Fatalf("expected shaded band, got %T", v.Current().plotters[0])
	}
}
