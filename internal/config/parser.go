package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"myvis/internal/colordict"
	"myvis/internal/logging"
	"myvis/internal/vis"

	"gopkg.in/yaml.v3"
)

const DefaultDPI = vis.DefaultDPI

// SchemeEnv names the variable holding the colour scheme of figures that do
// not set one.
const SchemeEnv = "MYVIS_COLORSCHEME"

func LoadConfig(filepath string) (*FigureConfig, error) {
	config, _, err := LoadConfigWithContent(filepath)
	return config, err
}

func LoadConfigWithContent(filepath string) (*FigureConfig, string, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	originalContent := string(data)
	config, err := ParseConfig(originalContent)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to load config file")
		return nil, "", err
	}
	return config, originalContent, nil
}

// ParseConfig expands ${VAR} references, unmarshals and validates a figure
// description.
func ParseConfig(content string) (*FigureConfig, error) {
	expanded := expandEnvVars(content)

	var config FigureConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func applyDefaults(config *FigureConfig) {
	if config.Output.DPI == 0 {
		config.Output.DPI = DefaultDPI
	}
	if config.Figure.ColorScheme == "" {
		config.Figure.ColorScheme = os.Getenv(SchemeEnv)
	}
	if config.Figure.ColorScheme == "" {
		config.Figure.ColorScheme = colordict.DefaultScheme
	}
	for i := range config.Series {
		s := &config.Series[i]
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if s.Pos == "" {
			s.Pos = vis.DefaultPos
		}
		if s.Source != nil {
			s.Source.Kind = strings.ToLower(strings.TrimSpace(s.Source.Kind))
		}
	}
	for i := range config.Axes {
		if config.Axes[i].Projection == "" {
			config.Axes[i].Projection = "2d"
		}
	}
}

func validateConfig(config *FigureConfig) error {
	if config.Output.File == "" {
		return fmt.Errorf("output file is required")
	}
	if _, err := vis.FormatOf(config.Output.File); err != nil {
		return err
	}
	if config.Output.DPI < 0 {
		return fmt.Errorf("dpi must be greater than 0")
	}
	if config.Figure.Aspect < 0 {
		return fmt.Errorf("aspect must be greater than 0")
	}
	if (config.Figure.Width == 0) != (config.Figure.Height == 0) {
		return fmt.Errorf("width and height must be given together")
	}
	if config.Figure.Width < 0 || config.Figure.Height < 0 {
		return fmt.Errorf("width and height must be greater than 0")
	}
	if _, ok := colordict.Lookup(config.Figure.ColorScheme); !ok {
		logging.GetLogger().WithField("colorscheme", config.Figure.ColorScheme).Warn("Unknown color scheme, falling back to default")
	}

	if len(config.Series) == 0 {
		return fmt.Errorf("at least one series must be defined")
	}

	axes := make(map[string]string)
	for i, a := range config.Axes {
		p, err := vis.ParsePosition(a.Pos)
		if err != nil {
			return fmt.Errorf("axes %d: %w", i, err)
		}
		if a.Projection != "2d" && a.Projection != "3d" {
			return fmt.Errorf("axes %s: unknown projection %q", p, a.Projection)
		}
		if _, dup := axes[p.String()]; dup {
			return fmt.Errorf("axes %s: position is already used", p)
		}
		for _, share := range []string{a.ShareX, a.ShareY} {
			if share == "" {
				continue
			}
			sp, err := vis.ParsePosition(share)
			if err != nil {
				return fmt.Errorf("axes %s: %w", p, err)
			}
			if a.Projection != "2d" || axes[sp.String()] != "2d" {
				return fmt.Errorf("axes %s: shared axes %s must be 2d axes declared before it", p, share)
			}
		}
		axes[p.String()] = a.Projection
	}

	for i, s := range config.Series {
		if err := validateSeries(s); err != nil {
			return fmt.Errorf("series %s: %w", s.DisplayName(i), err)
		}
	}

	for i, g := range config.Grids {
		if _, err := vis.ParsePosition(g); err != nil {
			return fmt.Errorf("grid %d: %w", i, err)
		}
	}
	for i, l := range config.Legends {
		if _, err := vis.ParsePosition(l.Pos); err != nil {
			return fmt.Errorf("legend %d: %w", i, err)
		}
		if l.FrameAlpha != nil && (*l.FrameAlpha < 0 || *l.FrameAlpha > 1) {
			return fmt.Errorf("legend %d: framealpha must be within [0, 1]", i)
		}
	}
	for i, c := range config.Coaxes {
		if _, err := vis.ParsePosition(c.Pos); err != nil {
			return fmt.Errorf("coaxis %d: %w", i, err)
		}
		if len(c.Ticks) != len(c.Labels) {
			return fmt.Errorf("coaxis %d: %d ticks but %d labels", i, len(c.Ticks), len(c.Labels))
		}
		if c.Axis != "" && c.Axis != "x" && c.Axis != "y" {
			return fmt.Errorf("coaxis %d: unknown axis %q", i, c.Axis)
		}
	}

	return nil
}

func validateSeries(s SeriesConfig) error {
	if _, err := vis.ParsePosition(s.Pos); err != nil {
		return err
	}
	if s.Size != nil && *s.Size < 0 {
		return fmt.Errorf("marker size must not be negative")
	}

	if s.Source != nil {
		return validateSource(s)
	}

	switch s.Type {
	case SeriesPlot, SeriesScatter:
		return sameLength(map[string][]float64{"x": s.X, "y": s.Y}, "x")
	case SeriesErrorbar:
		if err := sameLength(map[string][]float64{"x": s.X, "y": s.Y}, "x"); err != nil {
			return err
		}
		if s.XErr != nil && len(s.XErr) != len(s.X) {
			return fmt.Errorf("xerr has %d values, want %d", len(s.XErr), len(s.X))
		}
		if s.YErr != nil && len(s.YErr) != len(s.Y) {
			return fmt.Errorf("yerr has %d values, want %d", len(s.YErr), len(s.Y))
		}
		return nil
	case SeriesPlot3D, SeriesScatter3D:
		return sameLength(map[string][]float64{"x": s.X, "y": s.Y, "z": s.Z}, "x")
	case SeriesImage:
		if len(s.Grid) == 0 || len(s.Grid[0]) == 0 {
			return fmt.Errorf("image needs a non-empty grid")
		}
		for r, row := range s.Grid {
			if len(row) != len(s.Grid[0]) {
				return fmt.Errorf("grid row %d has %d values, want %d", r, len(row), len(s.Grid[0]))
			}
		}
		if s.VMin != nil && s.VMax != nil && *s.VMin > *s.VMax {
			return fmt.Errorf("vmin must not exceed vmax")
		}
		return nil
	case SeriesArrow:
		if s.Arrow == nil {
			return fmt.Errorf("arrow needs xi, yi, xf and yf")
		}
		return nil
	case "":
		return fmt.Errorf("type is required")
	}
	return fmt.Errorf("unknown type %q", s.Type)
}

func validateSource(s SeriesConfig) error {
	src := s.Source
	switch s.Type {
	case SeriesPlot, SeriesScatter, SeriesErrorbar, SeriesPlot3D, SeriesScatter3D:
	default:
		return fmt.Errorf("type %q cannot read from a source", s.Type)
	}
	if src.X == "" || src.Y == "" {
		return fmt.Errorf("source needs x and y columns")
	}
	if s.Is3D() && src.Z == "" {
		return fmt.Errorf("source needs a z column for %s", s.Type)
	}

	switch src.Kind {
	case SourceCSV:
		if src.File == "" {
			return fmt.Errorf("csv source needs a file")
		}
	case SourceInfluxDB:
		if src.Query == "" && src.Measurement == "" {
			return fmt.Errorf("influxdb source needs a query or a measurement")
		}
	default:
		return fmt.Errorf("unknown source kind %q", src.Kind)
	}
	return nil
}

func sameLength(values map[string][]float64, ref string) error {
	want := len(values[ref])
	if want == 0 {
		return fmt.Errorf("%s must not be empty", ref)
	}
	for _, name := range []string{"x", "y", "z"} {
		v, ok := values[name]
		if !ok {
			continue
		}
		if len(v) != want {
			return fmt.Errorf("%s has %d values, want %d", name, len(v), want)
		}
	}
	return nil
}
