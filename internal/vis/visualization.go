// Package vis is a thin convenience layer over gonum/plot. A Visualization
// is a figure made of subplots; its shorthand methods (Plot, Errorbar,
// Image, Scatter, Arrow, Plot3D, Scatter3D) merge keyword arguments against
// a table of defaults, forward to the matching plotter and then restyle the
// axes with the active colour scheme.
package vis

import (
	"fmt"
	"image/color"
	"math"

	"myvis/internal/colordict"
	"myvis/internal/logging"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultPos           = "111"
	DefaultTickFontSize  = 12
	DefaultLabelFontSize = 18
	DefaultMarkerSize    = 10
	DefaultDPI           = 360
)

type Visualization struct {
	scheme        colordict.Scheme
	tickFontSize  float64
	labelFontSize float64
	width, height vg.Length
	defaults      []Default

	axes    []*Axes
	current *Axes

	logger     *logrus.Logger
	argsLogger *logrus.Logger
}

type settings struct {
	aspect        float64
	figW, figH    float64
	tickFontSize  float64
	labelFontSize float64
	scheme        string
}

type Option func(*settings)

// WithAspect sets the height/width ratio used when no explicit figure size
// is given.
func WithAspect(aspect float64) Option {
	return func(s *settings) { s.aspect = aspect }
}

// WithFigSize sets the figure size in inches.
func WithFigSize(w, h float64) Option {
	return func(s *settings) { s.figW, s.figH = w, h }
}

func WithTickFontSize(pt float64) Option {
	return func(s *settings) { s.tickFontSize = pt }
}

func WithLabelFontSize(pt float64) Option {
	return func(s *settings) { s.labelFontSize = pt }
}

func WithColorScheme(name string) Option {
	return func(s *settings) { s.scheme = name }
}

func New(opts ...Option) (*Visualization, error) {
	s := settings{
		aspect:        1,
		tickFontSize:  DefaultTickFontSize,
		labelFontSize: DefaultLabelFontSize,
		scheme:        colordict.DefaultScheme,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.figW == 0 && s.figH == 0 {
		if s.aspect <= 0 {
			return nil, fmt.Errorf("aspect must be greater than 0, got %v", s.aspect)
		}
		s.figW, s.figH = FigAspect(s.aspect)
	}
	if s.figW <= 0 || s.figH <= 0 {
		return nil, fmt.Errorf("invalid figure size %vx%v", s.figW, s.figH)
	}

	scheme := colordict.Get(s.scheme)
	v := &Visualization{
		scheme:        scheme,
		tickFontSize:  s.tickFontSize,
		labelFontSize: s.labelFontSize,
		width:         vg.Length(s.figW) * vg.Inch,
		height:        vg.Length(s.figH) * vg.Inch,
		logger:        logging.GetLogger(),
		argsLogger:    logging.GetArgsLogger(),
	}
	v.defaults = []Default{
		{"label", ""},
		{"color", scheme.PrimaryColors[0]},
		{"ecolor", scheme.HelperColors[0]},
		{"linestyle", "solid"},
		{"shadow", scheme.PrimaryShadows[0]},
		{"alpha", nil},
		{"linewidth", 1},
		{"head_width", 0.05},
		{"head_length", 0.1},
		{"silent", false},
	}

	v.logger.WithFields(logrus.Fields{
		"scheme": scheme.Name,
		"width":  s.figW,
		"height": s.figH,
	}).Debug("Created figure")

	return v, nil
}

// FigAspect returns a figure size in inches with the given height/width
// ratio, using a 4.8in base height and keeping both sides within
// [4,16]x[2,16] inches.
func FigAspect(aspect float64) (w, h float64) {
	h = 4.8
	w = h / aspect

	shrink := math.Min(1, math.Min(w/4, h/2))
	w, h = w/shrink, h/shrink
	grow := math.Max(1, math.Max(w/16, h/16))
	w, h = w/grow, h/grow

	w = math.Max(4, math.Min(16, w))
	h = math.Max(2, math.Min(16, h))
	return w, h
}

func (v *Visualization) Scheme() colordict.Scheme { return v.scheme }

// Size returns the figure size.
func (v *Visualization) Size() (w, h vg.Length) { return v.width, v.height }

// Defaults returns a copy of the keyword defaults table.
func (v *Visualization) Defaults() []Default {
	out := make([]Default, len(v.defaults))
	copy(out, v.defaults)
	return out
}

// Axes returns the subplots in creation order.
func (v *Visualization) Axes() []*Axes {
	out := make([]*Axes, len(v.axes))
	copy(out, v.axes)
	return out
}

// Current returns the active subplot, or nil before anything was drawn.
func (v *Visualization) Current() *Axes { return v.current }

func (v *Visualization) getParams(args Args) Args {
	return getParams(v.defaults, args)
}

// printArgs echoes the keyword arguments a primitive was called with.
func (v *Visualization) printArgs(title string, args Args) {
	if len(args) == 0 {
		return
	}
	fields := make(logrus.Fields, len(args))
	for k, val := range args {
		fields[k] = val
	}
	v.argsLogger.WithFields(fields).Infof("%q is plotting using following parameters", title)
}

// begin resolves the target axes and merged parameters of a primitive.
func (v *Visualization) begin(title, pos string, ax *Axes, threeD bool, args Args) (*Axes, Args, error) {
	if err := args.check(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", title, err)
	}
	if ax == nil {
		var err error
		if threeD {
			ax, err = v.subplot3D(pos)
		} else {
			ax, err = v.subplot(pos)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if ax.fig != v {
		return nil, nil, fmt.Errorf("%s: axes belong to another figure", title)
	}
	if ax.threeD != threeD {
		kind := "2d"
		if ax.threeD {
			kind = "3d"
		}
		return nil, nil, fmt.Errorf("%s: cannot draw on %s axes", title, kind)
	}
	v.current = ax

	params := v.getParams(args)
	if !params.Bool("silent", false) {
		v.printArgs(title, args)
	}
	return ax, params, nil
}

// decorate applies the cosmetic pass shared by the 2D primitives.
func (v *Visualization) decorate(ax *Axes, args Args) error {
	if err := v.setScales(ax, args); err != nil {
		return err
	}
	v.setLabels(ax, args)
	v.setArea(ax, args)
	v.styleSpines(ax)
	v.setAxisColor(ax)
	return nil
}

func toColor(val interface{}) (color.Color, error) {
	switch c := val.(type) {
	case color.Color:
		return c, nil
	case string:
		return colordict.ParseColor(c)
	case nil:
		return nil, fmt.Errorf("missing color")
	}
	return nil, fmt.Errorf("unsupported color value %v", val)
}

// paramColor parses a colour parameter and applies the alpha parameter when
// one was given.
func (v *Visualization) paramColor(params Args, key string) (color.Color, error) {
	c, err := toColor(params[key])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if a, ok := toFloat(params["alpha"]); ok {
		c = colordict.WithAlpha(c, a)
	}
	return c, nil
}
