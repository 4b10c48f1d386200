package vis

import (
	"fmt"
	"strings"

	"myvis/internal/colordict"
)

func parseScale(name, val string) (string, error) {
	switch strings.ToLower(val) {
	case ScaleLinear:
		return ScaleLinear, nil
	case ScaleLog:
		return ScaleLog, nil
	}
	return "", fmt.Errorf("unsupported %s %q", name, val)
}

// setScales applies xscale, yscale and, on 3D axes, zscale.
func (v *Visualization) setScales(ax *Axes, args Args) error {
	if args.Has("xscale") {
		s, err := parseScale("xscale", args.String("xscale", ""))
		if err != nil {
			return err
		}
		ax.x.scale = s
	}
	if args.Has("yscale") {
		s, err := parseScale("yscale", args.String("yscale", ""))
		if err != nil {
			return err
		}
		ax.y.scale = s
	}
	if args.Has("zscale") {
		if !ax.threeD {
			return fmt.Errorf("zscale needs 3d axes")
		}
		s, err := parseScale("zscale", args.String("zscale", ""))
		if err != nil {
			return err
		}
		ax.z.scale = s
	}
	return nil
}

func (v *Visualization) setLabels(ax *Axes, args Args) {
	if args.Has("xlabel") {
		ax.x.label = args.String("xlabel", "")
	}
	if args.Has("ylabel") {
		ax.y.label = args.String("ylabel", "")
	}
	if ax.threeD && args.Has("zlabel") {
		ax.z.label = args.String("zlabel", "")
	}
	if args.Has("title") {
		ax.title = args.String("title", "")
	}
}

// setArea applies the explicit axis limits found in args.
func (v *Visualization) setArea(ax *Axes, args Args) {
	setLimit := func(a *axisState, prefix string) {
		if args.Has(prefix + "min") {
			a.min = args.Float(prefix+"min", 0)
			a.hasMin = true
		}
		if args.Has(prefix + "max") {
			a.max = args.Float(prefix+"max", 0)
			a.hasMax = true
		}
	}
	setLimit(&ax.x, "x")
	setLimit(&ax.y, "y")
	if ax.threeD {
		setLimit(&ax.z, "z")
	}
}

func (v *Visualization) styleSpines(ax *Axes) {
	ax.spineColor = colordict.MustParseColor(v.scheme.AxisColor)
}

// setAxisColor colours tick marks, tick labels and axis labels and sets
// their font sizes.
func (v *Visualization) setAxisColor(ax *Axes) {
	ax.axisColor = colordict.MustParseColor(v.scheme.AxisColor)
	ax.tickFontSize = v.tickFontSize
	ax.labelFontSize = v.labelFontSize
}
