package config

import "fmt"

// FigureConfig describes one figure: its size and colour scheme, where it is
// written, and the series drawn on it.
type FigureConfig struct {
	Figure  FigureInfo     `yaml:"figure"`
	Output  OutputConfig   `yaml:"output"`
	Data    DataConfig     `yaml:"data"`
	Axes    []AxesConfig   `yaml:"axes"`
	Series  []SeriesConfig `yaml:"series"`
	Grids   []string       `yaml:"grids"`
	Legends []LegendConfig `yaml:"legends"`
	Coaxes  []CoaxisConfig `yaml:"coaxes"`
}

type FigureInfo struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Aspect        float64 `yaml:"aspect"`
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	TickFontSize  float64 `yaml:"tick_font_size"`
	LabelFontSize float64 `yaml:"label_font_size"`
	ColorScheme   string  `yaml:"colorscheme"`
	LogLevel      string  `yaml:"log_level"`
}

type OutputConfig struct {
	File        string `yaml:"file"`
	DPI         int    `yaml:"dpi"`
	Transparent *bool  `yaml:"transparent"`
	// Wrapper writes a LaTeX figure environment next to .tex outputs.
	Wrapper bool   `yaml:"wrapper"`
	Caption string `yaml:"caption"`
	Label   string `yaml:"label"`
}

type DataConfig struct {
	DB DatabaseConfig `yaml:"db"`
}

type DatabaseConfig struct {
	Host   string `yaml:"host"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type AxesConfig struct {
	Pos string `yaml:"pos"`
	// Projection is "2d" (default) or "3d".
	Projection string `yaml:"projection"`
	ShareX     string `yaml:"sharex"`
	ShareY     string `yaml:"sharey"`
}

const (
	SeriesPlot      = "plot"
	SeriesErrorbar  = "errorbar"
	SeriesImage     = "image"
	SeriesScatter   = "scatter"
	SeriesArrow     = "arrow"
	SeriesPlot3D    = "plot3d"
	SeriesScatter3D = "scatter3d"
)

type SeriesConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Pos  string `yaml:"pos"`

	X    []float64   `yaml:"x"`
	Y    []float64   `yaml:"y"`
	Z    []float64   `yaml:"z"`
	XErr []float64   `yaml:"xerr"`
	YErr []float64   `yaml:"yerr"`
	Grid [][]float64 `yaml:"grid"`

	Arrow *ArrowConfig `yaml:"arrow"`

	// Size is the marker area in pt^2. Unset means the default size, zero
	// draws no markers.
	Size          *float64 `yaml:"s"`
	VMin          *float64 `yaml:"vmin"`
	VMax          *float64 `yaml:"vmax"`
	Interpolation string   `yaml:"interpolation"`

	Source *SourceConfig `yaml:"source"`

	// Args are forwarded to the plotting primitive as keyword arguments.
	Args map[string]interface{} `yaml:"args"`
}

type ArrowConfig struct {
	XI float64 `yaml:"xi"`
	YI float64 `yaml:"yi"`
	XF float64 `yaml:"xf"`
	YF float64 `yaml:"yf"`
}

const (
	SourceCSV      = "csv"
	SourceInfluxDB = "influxdb"
)

// SourceConfig loads series values from outside the figure file. For csv
// the column fields name CSV columns, for influxdb they name record fields,
// with "_time" giving seconds since the first record.
type SourceConfig struct {
	Kind string `yaml:"kind"`
	File string `yaml:"file"`

	X    string `yaml:"x"`
	Y    string `yaml:"y"`
	Z    string `yaml:"z"`
	XErr string `yaml:"xerr"`
	YErr string `yaml:"yerr"`

	Query       string            `yaml:"query"`
	Measurement string            `yaml:"measurement"`
	Start       string            `yaml:"start"`
	Stop        string            `yaml:"stop"`
	Tags        map[string]string `yaml:"tags"`
}

type LegendConfig struct {
	Pos        string   `yaml:"pos"`
	Loc        string   `yaml:"loc"`
	FontSize   string   `yaml:"fontsize"`
	FrameAlpha *float64 `yaml:"framealpha"`
	FrameOn    bool     `yaml:"frameon"`
	BgColor    string   `yaml:"bgcolor"`
}

type CoaxisConfig struct {
	Pos            string                 `yaml:"pos"`
	Axis           string                 `yaml:"axis"`
	Scale          string                 `yaml:"scale"`
	Ticks          []float64              `yaml:"ticks"`
	Labels         []string               `yaml:"labels"`
	Label          string                 `yaml:"label"`
	HideMinorTicks bool                   `yaml:"hide_minor_ticks"`
	Args           map[string]interface{} `yaml:"args"`
}

// IsTransparent reports whether the figure background is left transparent,
// which is the default.
func (o OutputConfig) IsTransparent() bool {
	return o.Transparent == nil || *o.Transparent
}

// Is3D reports whether the series needs 3D axes.
func (s SeriesConfig) Is3D() bool {
	return s.Type == SeriesPlot3D || s.Type == SeriesScatter3D
}

// DisplayName returns the series name, or its type and index.
func (s SeriesConfig) DisplayName(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%s#%d", s.Type, index)
}
