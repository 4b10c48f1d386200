package vis

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgtex"
)

// Formats lists the output formats Save and WriteTo understand.
var Formats = []string{"png", "jpg", "jpeg", "tif", "tiff", "svg", "pdf", "eps", "tex"}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// FormatOf returns the output format implied by a file name.
func FormatOf(name string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !supported(format) {
		return "", fmt.Errorf("unsupported output format %q for %s", format, name)
	}
	return format, nil
}

// Draw renders every subplot onto c.
func (v *Visualization) Draw(c draw.Canvas) error {
	xr, yr := v.sharedRanges()
	for _, ax := range v.axes {
		if err := ax.draw(ax.pos.cell(c), xr[ax], yr[ax]); err != nil {
			return fmt.Errorf("subplot %s: %w", ax.pos, err)
		}
	}
	return nil
}

// sharedRanges computes the 2D ranges of every subplot, with shared axes
// spanning the union of their partners.
func (v *Visualization) sharedRanges() (xr, yr map[*Axes]span) {
	xr = make(map[*Axes]span, len(v.axes))
	yr = make(map[*Axes]span, len(v.axes))
	for _, ax := range v.axes {
		if !ax.threeD {
			xr[ax], yr[ax] = ax.ranges()
		}
	}
	// repeat until stable, so chains like a->b<-c end up with one range
	for changed := true; changed; {
		changed = false
		for _, ax := range v.axes {
			if s := ax.sharex; s != nil && !s.threeD && s.fig == v {
				changed = link(xr, ax, s) || changed
			}
			if s := ax.sharey; s != nil && !s.threeD && s.fig == v {
				changed = link(yr, ax, s) || changed
			}
		}
	}
	return xr, yr
}

// link gives a and b the union of their ranges and reports whether either
// changed.
func link(r map[*Axes]span, a, b *Axes) bool {
	u := r[a].union(r[b])
	if r[a] == u && r[b] == u {
		return false
	}
	r[a], r[b] = u, u
	return true
}

// Save writes the figure to name, picking the format from its extension.
// dpi only applies to raster formats.
func (v *Visualization) Save(name string, dpi int, transparent bool) error {
	format, err := FormatOf(name)
	if err != nil {
		return err
	}

	// render fully before touching the file, so a failed figure leaves
	// nothing behind
	var buf bytes.Buffer
	n, err := v.WriteTo(&buf, format, dpi, transparent)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	v.logger.WithFields(logrus.Fields{
		"file":   name,
		"format": format,
		"bytes":  n,
		"dpi":    dpi,
	}).Info("Saved figure")
	return nil
}

// WriteTo renders the figure in the given format to w.
func (v *Visualization) WriteTo(w io.Writer, format string, dpi int, transparent bool) (int64, error) {
	format = strings.ToLower(format)
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		bg := color.Color(color.White)
		if transparent && format != "jpg" && format != "jpeg" {
			bg = color.Transparent
		}
		img := vgimg.NewWith(
			vgimg.UseWH(v.width, v.height),
			vgimg.UseDPI(dpi),
			vgimg.UseBackgroundColor(bg),
		)
		if err := v.Draw(draw.New(img)); err != nil {
			return 0, err
		}

		var out io.WriterTo
		switch format {
		case "png":
			out = vgimg.PngCanvas{Canvas: img}
		case "jpg", "jpeg":
			out = vgimg.JpegCanvas{Canvas: img}
		default:
			out = vgimg.TiffCanvas{Canvas: img}
		}
		return out.WriteTo(w)

	case "tex":
		defer v.vectorize()()
		c := vgtex.New(v.width, v.height)
		if err := v.Draw(v.background(draw.New(c), transparent)); err != nil {
			return 0, err
		}
		return c.WriteTo(w)

	case "svg", "pdf", "eps":
		c, err := draw.NewFormattedCanvas(v.width, v.height, format)
		if err != nil {
			return 0, err
		}
		if err := v.Draw(v.background(draw.New(c), transparent)); err != nil {
			return 0, err
		}
		return c.WriteTo(w)
	}
	return 0, fmt.Errorf("unsupported output format %q", format)
}

// vectorize switches rasterized heat maps to vector cells, since vgtex
// stores raster images as separate files. The returned func restores them.
func (v *Visualization) vectorize() func() {
	var switched []*plotter.HeatMap
	for _, ax := range v.axes {
		for _, p := range ax.plotters {
			if hm, ok := p.(*plotter.HeatMap); ok && hm.Rasterized {
				hm.Rasterized = false
				switched = append(switched, hm)
			}
		}
	}
	return func() {
		for _, hm := range switched {
			hm.Rasterized = true
		}
	}
}

// background fills vector canvases white unless the figure is transparent.
func (v *Visualization) background(c draw.Canvas, transparent bool) draw.Canvas {
	if !transparent {
		c.SetColor(color.White)
		c.Fill(c.Rectangle.Path())
	}
	return c
}

// Close drops every subplot so the figure can be reused.
func (v *Visualization) Close() {
	v.axes = nil
	v.current = nil
}
