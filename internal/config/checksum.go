package config

import (
	"crypto/md5"
	"encoding/hex"

	"gopkg.in/yaml.v3"
)

type checksumPayload struct {
	Figure  FigureInfo     `yaml:"figure"`
	Axes    []AxesConfig   `yaml:"axes"`
	Series  []SeriesConfig `yaml:"series"`
	Grids   []string       `yaml:"grids"`
	Legends []LegendConfig `yaml:"legends"`
	Coaxes  []CoaxisConfig `yaml:"coaxes"`
}

// FigureChecksum returns a short, stable checksum of what a figure draws,
// independent of where it is written and of database credentials.
//
// It computes MD5 over a canonical YAML representation and returns the first 6 hex
// characters (equivalent to `md5sum | cut -c1-6`). YAML keeps NaN and Inf
// values that image grids may hold.
func FigureChecksum(cfg *FigureConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}

	payload := checksumPayload{
		Figure:  cfg.Figure,
		Axes:    cfg.Axes,
		Series:  cfg.Series,
		Grids:   cfg.Grids,
		Legends: cfg.Legends,
		Coaxes:  cfg.Coaxes,
	}
	payload.Figure.LogLevel = ""

	b, err := yaml.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(b)
	hexStr := hex.EncodeToString(sum[:])
	if len(hexStr) > 6 {
		hexStr = hexStr[:6]
	}
	return hexStr, nil
}
