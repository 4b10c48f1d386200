package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"myvis/internal/config"
)

// ReadCSV reads the configured columns from a CSV file with a header row.
// Lines starting with '#' are skipped.
func ReadCSV(path string, src *config.SourceConfig) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	series, err := parseCSV(f, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

func parseCSV(r io.Reader, src *config.SourceConfig) (*Series, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	cols := columns(src)
	pos := make([]int, len(cols))
	for i, name := range cols {
		pos[i] = -1
		if name == "" {
			continue
		}
		p, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		pos[i] = p
	}

	values := make([][]float64, len(cols))
	for n := 1; ; n++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, p := range pos {
			if p < 0 {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[p]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", n, cols[i], err)
			}
			values[i] = append(values[i], v)
		}
	}

	if len(values[0]) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	series := &Series{}
	for i, v := range values {
		series.assign(i, v)
	}
	return series, nil
}
