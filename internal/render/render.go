// Package render draws a figure described by a config.FigureConfig.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"myvis/internal/colordict"
	"myvis/internal/config"
	"myvis/internal/logging"
	wrapperTemplate "myvis/internal/render/templates/wrapper"
	"myvis/internal/source"
	"myvis/internal/vis"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type Renderer struct {
	loader *source.Loader
	logger *logrus.Logger
}

// NewRenderer returns a renderer resolving relative data files against
// baseDir, usually the directory of the figure file.
func NewRenderer(baseDir string, db config.DatabaseConfig) *Renderer {
	return &Renderer{
		loader: source.NewLoader(baseDir, db),
		logger: logging.GetLogger(),
	}
}

func (r *Renderer) Close() {
	if r.loader != nil {
		r.loader.Close()
	}
}

type Result struct {
	Output   string
	Wrapper  string
	Checksum string
	Series   int
}

// Render draws cfg and writes it to output, or to the configured output file
// when output is empty.
func (r *Renderer) Render(ctx context.Context, cfg *config.FigureConfig, output string) (*Result, error) {
	if output == "" {
		output = cfg.Output.File
	}
	format, err := vis.FormatOf(output)
	if err != nil {
		return nil, err
	}

	checksum, err := config.FigureChecksum(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compute figure checksum: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"figure":   cfg.Figure.Name,
		"series":   len(cfg.Series),
		"output":   output,
		"checksum": checksum,
	}).Info("Rendering figure")

	v, err := vis.New(figureOptions(cfg.Figure)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create figure: %w", err)
	}
	defer v.Close()

	axes, err := createAxes(v, cfg.Axes)
	if err != nil {
		return nil, err
	}

	for i, s := range cfg.Series {
		if err := r.drawSeries(ctx, v, axes, i, s); err != nil {
			return nil, fmt.Errorf("series %s: %w", s.DisplayName(i), err)
		}
	}

	for _, pos := range cfg.Grids {
		ax, err := axesAt(v, pos)
		if err != nil {
			return nil, fmt.Errorf("grid: %w", err)
		}
		if err := v.SetGrid(ax); err != nil {
			return nil, fmt.Errorf("grid %s: %w", pos, err)
		}
	}

	for _, c := range cfg.Coaxes {
		ax, err := axesAt(v, c.Pos)
		if err != nil {
			return nil, fmt.Errorf("coaxis: %w", err)
		}
		opts := vis.CoaxisOptions{Axis: c.Axis, Scale: c.Scale, HideMinorTicks: c.HideMinorTicks}
		if err := v.Coaxis(c.Ticks, c.Labels, c.Label, ax, opts, vis.Args(c.Args)); err != nil {
			return nil, fmt.Errorf("coaxis %s: %w", c.Pos, err)
		}
	}

	for _, l := range cfg.Legends {
		ax, err := axesAt(v, l.Pos)
		if err != nil {
			return nil, fmt.Errorf("legend: %w", err)
		}
		if err := v.Legend(l.Pos, ax, legendOptions(l, v.Scheme())); err != nil {
			return nil, fmt.Errorf("legend %s: %w", l.Pos, err)
		}
	}

	if err := v.Save(output, cfg.Output.DPI, cfg.Output.IsTransparent()); err != nil {
		return nil, err
	}

	result := &Result{Output: output, Checksum: checksum, Series: len(cfg.Series)}
	if format == "tex" && cfg.Output.Wrapper {
		result.Wrapper = wrapperPath(output)
		content, err := renderWrapper(prepareWrapperData(cfg, output, checksum))
		if err != nil {
			return nil, fmt.Errorf("failed to render wrapper: %w", err)
		}
		if err := os.WriteFile(result.Wrapper, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write wrapper: %w", err)
		}
		r.logger.WithField("file", result.Wrapper).Info("Saved LaTeX wrapper")
	}

	r.logger.WithField("output", output).Info("Figure rendered successfully")
	return result, nil
}

func figureOptions(f config.FigureInfo) []vis.Option {
	var opts []vis.Option
	if f.Aspect > 0 {
		opts = append(opts, vis.WithAspect(f.Aspect))
	}
	if f.Width > 0 && f.Height > 0 {
		opts = append(opts, vis.WithFigSize(f.Width, f.Height))
	}
	if f.TickFontSize > 0 {
		opts = append(opts, vis.WithTickFontSize(f.TickFontSize))
	}
	if f.LabelFontSize > 0 {
		opts = append(opts, vis.WithLabelFontSize(f.LabelFontSize))
	}
	if f.ColorScheme != "" {
		opts = append(opts, vis.WithColorScheme(f.ColorScheme))
	}
	return opts
}

// createAxes creates the declared axes in order. Shared axes must already
// exist.
func createAxes(v *vis.Visualization, declared []config.AxesConfig) (map[string]*vis.Axes, error) {
	axes := make(map[string]*vis.Axes, len(declared))
	lookup := func(pos string) (*vis.Axes, error) {
		if pos == "" {
			return nil, nil
		}
		p, err := vis.ParsePosition(pos)
		if err != nil {
			return nil, err
		}
		ax, ok := axes[p.String()]
		if !ok {
			return nil, fmt.Errorf("shared axes %s are not declared", pos)
		}
		return ax, nil
	}

	for _, a := range declared {
		var (
			ax  *vis.Axes
			err error
		)
		if a.Projection == "3d" {
			ax, err = v.NewAxes3D(a.Pos)
		} else {
			var sharex, sharey *vis.Axes
			if sharex, err = lookup(a.ShareX); err != nil {
				return nil, fmt.Errorf("axes %s: %w", a.Pos, err)
			}
			if sharey, err = lookup(a.ShareY); err != nil {
				return nil, fmt.Errorf("axes %s: %w", a.Pos, err)
			}
			ax, err = v.NewAxes2D(a.Pos, sharex, sharey)
		}
		if err != nil {
			return nil, fmt.Errorf("axes %s: %w", a.Pos, err)
		}
		axes[ax.Position().String()] = ax
	}
	return axes, nil
}

// axesAt returns the axes drawn at pos.
func axesAt(v *vis.Visualization, pos string) (*vis.Axes, error) {
	p, err := vis.ParsePosition(pos)
	if err != nil {
		return nil, err
	}
	for _, ax := range v.Axes() {
		if ax.Position() == p {
			return ax, nil
		}
	}
	return nil, fmt.Errorf("no axes at %s", p)
}

func (r *Renderer) drawSeries(ctx context.Context, v *vis.Visualization, axes map[string]*vis.Axes, index int, s config.SeriesConfig) error {
	var ax *vis.Axes
	if p, err := vis.ParsePosition(s.Pos); err == nil {
		ax = axes[p.String()]
	}
	args := seriesArgs(s, v.Scheme().Style(index))

	r.logger.WithFields(logrus.Fields{
		"series": s.DisplayName(index),
		"type":   s.Type,
		"pos":    s.Pos,
	}).Debug("Drawing series")

	switch s.Type {
	case config.SeriesImage:
		return v.Image(s.Grid, s.Pos, ax, s.VMin, s.VMax, s.Interpolation, args)
	case config.SeriesArrow:
		a := s.Arrow
		return v.Arrow(a.XI, a.YI, a.XF, a.YF, s.Pos, ax, args)
	}

	data, err := r.loader.Load(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	size := float64(vis.DefaultMarkerSize)
	if s.Size != nil {
		size = *s.Size
	}

	switch s.Type {
	case config.SeriesPlot:
		return v.Plot(data.X, data.Y, s.Pos, ax, args)
	case config.SeriesErrorbar:
		return v.Errorbar(data.X, data.Y, data.XErr, data.YErr, s.Pos, ax, args)
	case config.SeriesScatter:
		return v.Scatter(data.X, data.Y, s.Pos, ax, size, args)
	case config.SeriesPlot3D:
		return v.Plot3D(data.X, data.Y, data.Z, s.Pos, ax, args)
	case config.SeriesScatter3D:
		return v.Scatter3D(data.X, data.Y, data.Z, s.Pos, ax, size, args)
	}
	return fmt.Errorf("unknown series type %q", s.Type)
}

// seriesArgs copies the configured args and fills in the colours of the
// series' slot in the scheme, so that consecutive series differ.
func seriesArgs(s config.SeriesConfig, style colordict.SeriesStyle) vis.Args {
	args := make(vis.Args, len(s.Args)+3)
	for k, val := range s.Args {
		args[k] = val
	}
	if s.Type == config.SeriesImage {
		return args
	}
	if !args.Has("color") {
		args["color"] = style.Color
	}
	if s.Type == config.SeriesErrorbar {
		if !args.Has("ecolor") {
			args["ecolor"] = style.Helper
		}
		if !args.Has("shadow") {
			args["shadow"] = style.Shadow
		}
	}
	return args
}

func legendOptions(l config.LegendConfig, scheme colordict.Scheme) vis.LegendOptions {
	opts := vis.DefaultLegendOptions()
	opts.BgColor = scheme.GridColor
	if l.Loc != "" {
		opts.Loc = l.Loc
	}
	if l.FontSize != "" {
		opts.FontSize = l.FontSize
	}
	if l.FrameAlpha != nil {
		opts.FrameAlpha = *l.FrameAlpha
	}
	if l.BgColor != "" {
		opts.BgColor = l.BgColor
	}
	opts.FrameOn = l.FrameOn
	return opts
}

func wrapperPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + "_wrapper.tex"
}

func prepareWrapperData(cfg *config.FigureConfig, output, checksum string) *wrapperTemplate.WrapperData {
	label := cfg.Output.Label
	if label == "" {
		label = "myvis-" + checksum
	}
	return &wrapperTemplate.WrapperData{
		GeneratedDate: time.Now().Format(time.RFC3339),
		FigureName:    cfg.Figure.Name,
		Checksum:      checksum,
		PlotFileName:  filepath.Base(output),
		Caption:       cfg.Output.Caption,
		LabelID:       label,
	}
}

func renderWrapper(data *wrapperTemplate.WrapperData) (string, error) {
	tmpl, err := template.New("wrapper").Parse(wrapperTemplate.WrapperTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse wrapper template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute wrapper template: %w", err)
	}

	return buf.String(), nil
}

// Colormap writes a horizontal colour bar of the named scheme to output.
func Colormap(name, output string) error {
	scheme, ok := colordict.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown color scheme %q (available: %s)", name, strings.Join(colordict.Names(), ", "))
	}
	format, err := vis.FormatOf(output)
	if err != nil {
		return err
	}
	if format == "tex" {
		return fmt.Errorf("color bars cannot be written as %s", format)
	}

	p := plot.New()
	p.Title.Text = scheme.Name
	p.HideY()
	p.X.Padding = 0
	p.Add(&plotter.ColorBar{ColorMap: scheme.Colormap()})

	if err := p.Save(6*vg.Inch, 1.2*vg.Inch, output); err != nil {
		return fmt.Errorf("failed to save color bar: %w", err)
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"scheme": scheme.Name,
		"file":   output,
	}).Info("Saved color bar")
	return nil
}
