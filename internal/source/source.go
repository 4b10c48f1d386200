// Package source resolves the values of a configured series: inline in the
// figure file, from CSV columns, or from an InfluxDB query.
package source

import (
	"context"
	"fmt"
	"path/filepath"

	"myvis/internal/config"
	"myvis/internal/logging"

	"github.com/sirupsen/logrus"
)

// Series holds the columns a plotting primitive consumes. Unused columns are
// nil.
type Series struct {
	X, Y, Z    []float64
	XErr, YErr []float64
}

func (s *Series) Len() int { return len(s.X) }

type Loader struct {
	baseDir string
	dbCfg   config.DatabaseConfig
	db      *DBClient
	logger  *logrus.Logger
}

// NewLoader returns a loader resolving relative CSV paths against baseDir.
// The InfluxDB client is only created once a series needs it.
func NewLoader(baseDir string, db config.DatabaseConfig) *Loader {
	return &Loader{
		baseDir: baseDir,
		dbCfg:   db,
		logger:  logging.GetLogger(),
	}
}

func (l *Loader) Close() {
	if l.db != nil {
		l.db.Close()
		l.db = nil
	}
}

func (l *Loader) Load(ctx context.Context, s config.SeriesConfig) (*Series, error) {
	if s.Source == nil {
		return &Series{X: s.X, Y: s.Y, Z: s.Z, XErr: s.XErr, YErr: s.YErr}, nil
	}

	var (
		series *Series
		err    error
	)
	switch s.Source.Kind {
	case config.SourceCSV:
		path := s.Source.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.baseDir, path)
		}
		series, err = ReadCSV(path, s.Source)
	case config.SourceInfluxDB:
		if l.db == nil {
			if l.db, err = NewDBClient(l.dbCfg, l.logger); err != nil {
				return nil, err
			}
		}
		series, err = l.db.QuerySeries(ctx, s.Source)
	default:
		return nil, fmt.Errorf("unknown source kind %q", s.Source.Kind)
	}
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"kind":   s.Source.Kind,
		"points": series.Len(),
	}).Debug("Loaded series from source")
	return series, nil
}

// columns lists the configured column names in X, Y, Z, XErr, YErr order.
func columns(src *config.SourceConfig) []string {
	return []string{src.X, src.Y, src.Z, src.XErr, src.YErr}
}

// assign stores the values of column i (as returned by columns) in s.
func (s *Series) assign(i int, values []float64) {
	switch i {
	case 0:
		s.X = values
	case 1:
		s.Y = values
	case 2:
		s.Z = values
	case 3:
		s.XErr = values
	case 4:
		s.YErr = values
	}
}
