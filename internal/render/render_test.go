package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"myvis/internal/colordict"
	"myvis/internal/config"
	"myvis/internal/vis"
)

const figureYAML = `
figure:
  name: overview
  width: 8
  height: 6
  colorscheme: ICE
output:
  file: out.png
  dpi: 72
axes:
  - pos: "221"
  - pos: "222"
    sharex: "221"
  - pos: "224"
    projection: 3d
series:
  - name: line
    type: plot
    pos: "221"
    x: [1, 2, 3]
    y: [1, 10, 100]
    args: {label: line, yscale: log, silent: true}
  - type: errorbar
    pos: "221"
    x: [1, 2, 3]
    y: [2, 20, 50]
    yerr: [1, 2, 5]
    args: {label: band, shaded: true, silent: true}
  - type: scatter
    pos: "222"
    x: [0, 1, 2]
    y: [3, 1, 2]
    s: 20
    args: {silent: true}
  - type: arrow
    pos: "222"
    arrow: {xi: 0, yi: 0, xf: 1, yf: 1}
    args: {silent: true}
  - type: image
    pos: "223"
    grid:
      - [1, 2, 3]
      - [4, 5, 6]
    args: {silent: true}
  - type: scatter3d
    pos: "224"
    x: [0, 1, 2]
    y: [0, 1, 4]
    z: [0, 1, 8]
    args: {silent: true, zlabel: depth}
grids: ["221", "222"]
coaxes:
  - pos: "221"
    axis: x
    ticks: [1, 3]
    labels: [low, high]
    label: range
    args: {silent: true}
legends:
  - pos: "221"
    loc: lower right
    frameon: true
`

func parseFigure(t *testing.T, content string) *config.FigureConfig {
	t.Helper()
	cfg, err := config.ParseConfig(content)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	return cfg
}

func TestRender_WritesPNG(t *testing.T) {
	cfg := parseFigure(t, figureYAML)
	r := NewRenderer(t.TempDir(), config.DatabaseConfig{})
	defer r.Close()

	out := filepath.Join(t.TempDir(), "figure.png")
	res, err := r.Render(context.Background(), cfg, out)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Output != out || res.Series != 6 || len(res.Checksum) != 6 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Wrapper != "" {
		t.Fatalf("png output should not get a wrapper")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestRender_TeXWrapper(t *testing.T) {
	cfg := parseFigure(t, `
figure: {name: decay}
output:
  file: decay.tex
  wrapper: true
  caption: Exponential decay
  label: decay
series:
  - type: plot
    x: [0, 1, 2]
    y: [1, 0.5, 0.25]
    args: {silent: true}
`)
	r := NewRenderer(".", config.DatabaseConfig{})
	defer r.Close()

	out := filepath.Join(t.TempDir(), "decay.tex")
	res, err := r.Render(context.Background(), cfg, out)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Wrapper != strings.TrimSuffix(out, ".tex")+"_wrapper.tex" {
		t.Fatalf("unexpected wrapper path %q", res.Wrapper)
	}
	data, err := os.ReadFile(res.Wrapper)
	if err != nil {
		t.Fatalf("failed to read wrapper: %v", err)
	}
	wrapper := string(data)
	for _, want := range []string{`\input{ decay.tex }`, `\caption{ Exponential decay }`, `\label{fig:decay}`, "% Checksum: " + res.Checksum} {
		if !strings.Contains(wrapper, want) {
			t.Fatalf("wrapper is missing %q:\n%s", want, wrapper)
		}
	}
}

func TestRender_CSVSource(t *testing.T) {
	dir := t.TempDir()
	csv := "t,v\n0,1\n1,4\n2,9\n"
	if err := os.WriteFile(filepath.Join(dir, "run.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	cfg := parseFigure(t, `
output: {file: run.svg}
series:
  - type: plot
    source: {kind: csv, file: run.csv, x: t, y: v}
    args: {silent: true}
`)
	r := NewRenderer(dir, config.DatabaseConfig{})
	defer r.Close()

	out := filepath.Join(dir, "run.svg")
	if _, err := r.Render(context.Background(), cfg, out); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatalf("output is not an SVG")
	}
}

func TestRender_MissingCSV(t *testing.T) {
	cfg := parseFigure(t, `
output: {file: run.png}
series:
  - name: missing
    type: plot
    source: {kind: csv, file: nope.csv, x: t, y: v}
`)
	r := NewRenderer(t.TempDir(), config.DatabaseConfig{})
	defer r.Close()

	_, err := r.Render(context.Background(), cfg, filepath.Join(t.TempDir(), "run.png"))
	if err == nil || !strings.Contains(err.Error(), "series missing") {
		t.Fatalf("expected series error, got %v", err)
	}
}

func TestCreateAxes_SharesDeclaredAxes(t *testing.T) {
	v, err := vis.New()
	if err != nil {
		t.Fatalf("vis.New failed: %v", err)
	}
	axes, err := createAxes(v, []config.AxesConfig{
		{Pos: "211", Projection: "2d"},
		{Pos: "212", Projection: "2d", ShareX: "211"},
	})
	if err != nil {
		t.Fatalf("createAxes failed: %v", err)
	}
	if len(axes) != 2 || axes["211"] == nil || axes["212"] == nil {
		t.Fatalf("unexpected axes %v", axes)
	}

	_, err = createAxes(v, []config.AxesConfig{{Pos: "212", Projection: "2d", ShareY: "211"}})
	if err == nil {
		t.Fatalf("expected error for undeclared shared axes")
	}
}

func TestAxesAt(t *testing.T) {
	v, err := vis.New()
	if err != nil {
		t.Fatalf("vis.New failed: %v", err)
	}
	if _, err := v.NewAxes2D("122", nil, nil); err != nil {
		t.Fatalf("NewAxes2D failed: %v", err)
	}
	ax, err := axesAt(v, "1,2,2")
	if err != nil || ax.Position().Index != 2 {
		t.Fatalf("axesAt returned %v, %v", ax, err)
	}
	if _, err := axesAt(v, "121"); err == nil {
		t.Fatalf("expected error for empty position")
	}
}

func TestSeriesArgs_SchemeColours(t *testing.T) {
	style := colordict.Get("ICE").Style(1)

	args := seriesArgs(config.SeriesConfig{Type: config.SeriesErrorbar}, style)
	if args["color"] != style.Color || args["ecolor"] != style.Helper || args["shadow"] != style.Shadow {
		t.Fatalf("unexpected errorbar args %v", args)
	}

	s := config.SeriesConfig{Type: config.SeriesPlot, Args: map[string]interface{}{"color": "black"}}
	args = seriesArgs(s, style)
	if args["color"] != "black" || args.Has("ecolor") {
		t.Fatalf("unexpected plot args %v", args)
	}
	if s.Args["color"] != "black" || len(s.Args) != 1 {
		t.Fatalf("configured args were modified")
	}

	args = seriesArgs(config.SeriesConfig{Type: config.SeriesImage}, style)
	if len(args) != 0 {
		t.Fatalf("image args should stay empty, got %v", args)
	}
}

func TestRenderWrapper_NoCaption(t *testing.T) {
	cfg := &config.FigureConfig{Figure: config.FigureInfo{Name: "plain"}}
	out, err := renderWrapper(prepareWrapperData(cfg, "/tmp/plain.tex", "abc123"))
	if err != nil {
		t.Fatalf("renderWrapper failed: %v", err)
	}
	if strings.Contains(out, `\caption`) {
		t.Fatalf("wrapper should not have a caption:\n%s", out)
	}
	if !strings.Contains(out, `\label{fig:myvis-abc123}`) || !strings.Contains(out, "% Figure: plain") {
		t.Fatalf("unexpected wrapper:\n%s", out)
	}
}

func TestColormap_PNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rainbow.png")
	if err := Colormap("RAINBOW", out); err != nil {
		t.Fatalf("Colormap failed: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("color bar was not written: %v", err)
	}
}

func TestColormap_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := Colormap("PLASMA", filepath.Join(dir, "x.png")); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
	if err := Colormap("ICE", filepath.Join(dir, "x.tex")); err == nil {
		t.Fatalf("expected error for tex output")
	}
	if err := Colormap("ICE", filepath.Join(dir, "x.bmp")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestRender_ImageWithGaps(t *testing.T) {
	cfg := parseFigure(t, `
output: {file: gaps.png, dpi: 72}
series:
  - type: image
    grid:
      - [1, .nan]
      - [3, 4]
    args: {silent: true}
`)
	r := NewRenderer(t.TempDir(), config.DatabaseConfig{})
	defer r.Close()

	out := filepath.Join(t.TempDir(), "gaps.png")
	res, err := r.Render(context.Background(), cfg, out)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(res.Checksum) != 6 {
		t.Fatalf("unexpected checksum %q", res.Checksum)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("image was not written: %v", err)
	}
}
