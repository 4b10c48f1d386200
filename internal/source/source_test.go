package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"myvis/internal/config"
)

func TestParseCSV_Columns(t *testing.T) {
	data := `# exported run
t, v, dv
0, 1.5, 0.1
1, 2.5, 0.2
`
	src := &config.SourceConfig{X: "t", Y: "v", YErr: "dv"}
	s, err := parseCSV(strings.NewReader(data), src)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if s.Len() != 2 || s.Y[1] != 2.5 || s.YErr[0] != 0.1 {
		t.Fatalf("unexpected series %+v", s)
	}
	if s.Z != nil || s.XErr != nil {
		t.Fatalf("unused columns should stay nil")
	}
}

func TestParseCSV_Errors(t *testing.T) {
	src := &config.SourceConfig{X: "t", Y: "missing"}
	if _, err := parseCSV(strings.NewReader("t,v\n1,2\n"), src); err == nil {
		t.Fatalf("expected missing column error")
	}
	src = &config.SourceConfig{X: "t", Y: "v"}
	if _, err := parseCSV(strings.NewReader("t,v\n1,abc\n"), src); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := parseCSV(strings.NewReader("t,v\n"), src); err == nil {
		t.Fatalf("expected no data error")
	}
}

func TestLoader_InlineAndCSV(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b,c\n1,2,3\n4,5,6\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	l := NewLoader(dir, config.DatabaseConfig{})
	defer l.Close()

	inline, err := l.Load(context.Background(), config.SeriesConfig{X: []float64{1}, Y: []float64{2}})
	if err != nil || inline.Len() != 1 {
		t.Fatalf("unexpected inline load %+v (%v)", inline, err)
	}

	s, err := l.Load(context.Background(), config.SeriesConfig{
		Type:   config.SeriesPlot3D,
		Source: &config.SourceConfig{Kind: config.SourceCSV, File: "data.csv", X: "a", Y: "b", Z: "c"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Z[1] != 6 {
		t.Fatalf("unexpected z column %v", s.Z)
	}
}

func TestLoader_InfluxNeedsSettings(t *testing.T) {
	for _, k := range []string{"INFLUXDB_HOST", "INFLUXDB_TOKEN", "INFLUXDB_ORG", "INFLUXDB_BUCKET"} {
		t.Setenv(k, "")
	}
	l := NewLoader(".", config.DatabaseConfig{Host: "http://localhost:8086"})
	_, err := l.Load(context.Background(), config.SeriesConfig{
		Source: &config.SourceConfig{Kind: config.SourceInfluxDB, Measurement: "m", X: "_time", Y: "v"},
	})
	if err == nil {
		t.Fatalf("expected missing settings error")
	}
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery("metrics", &config.SourceConfig{
		Measurement: "cpu",
		X:           TimeColumn,
		Y:           "usage",
		YErr:        "stddev",
		Start:       "-1h",
		Tags:        map[string]string{"host": "a", "core": "2"},
	})

	for _, want := range []string{
		`from(bucket: "metrics")`,
		`range(start: -1h)`,
		`r["_measurement"] == "cpu"`,
		`r["_field"] == "usage" or r["_field"] == "stddev"`,
		`pivot(rowKey:["_time"]`,
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
	if strings.Index(q, `r["core"]`) > strings.Index(q, `r["host"]`) {
		t.Fatalf("expected tag filters in sorted order:\n%s", q)
	}
	if strings.Contains(q, `"_time" or`) || strings.Contains(q, `== "_time"`) {
		t.Fatalf("time column must not be filtered as a field:\n%s", q)
	}
}

func TestSeriesFromRows(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{time: t0, values: map[string]interface{}{"v": 1.0, "n": int64(3)}},
		{time: t0.Add(1500 * time.Millisecond), values: map[string]interface{}{"v": 2.0, "n": int64(4)}},
	}
	s, err := seriesFromRows(rows, &config.SourceConfig{X: TimeColumn, Y: "v", Z: "n"})
	if err != nil {
		t.Fatalf("seriesFromRows: %v", err)
	}
	if s.X[0] != 0 || s.X[1] != 1.5 || s.Z[1] != 4 {
		t.Fatalf("unexpected series %+v", s)
	}

	if _, err := seriesFromRows(rows, &config.SourceConfig{X: TimeColumn, Y: "missing"}); err == nil {
		t.Fatalf("expected missing field error")
	}
	if _, err := seriesFromRows(nil, &config.SourceConfig{X: "a", Y: "b"}); err == nil {
		t.Fatalf("expected empty result error")
	}
}
