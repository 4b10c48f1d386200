package vis

import (
	"fmt"
	"image/color"

	"myvis/internal/colordict"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type gridStyle struct {
	background color.Color
	line       draw.LineStyle
}

// SetGrid fills the data area of ax (or the current axes) with the scheme
// background and draws solid grid lines behind the data.
func (v *Visualization) SetGrid(ax *Axes) error {
	if ax == nil {
		var err error
		if ax, err = v.gca(); err != nil {
			return err
		}
	}
	bg, err := colordict.ParseColor(v.scheme.Background)
	if err != nil {
		return fmt.Errorf("grid background: %w", err)
	}
	line, err := colordict.ParseColor(v.scheme.GridColor)
	if err != nil {
		return fmt.Errorf("grid color: %w", err)
	}

	ax.grid = &gridStyle{
		background: bg,
		line:       draw.LineStyle{Color: line, Width: vg.Points(1)},
	}
	return nil
}
