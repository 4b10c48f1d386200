package source

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"myvis/internal/config"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

// TimeColumn selects the record time, as seconds since the first record.
const TimeColumn = "_time"

type DBClient struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	bucket   string
	org      string
	logger   *logrus.Logger
}

// NewDBClient connects to InfluxDB. Settings missing from cfg are taken from
// INFLUXDB_HOST, INFLUXDB_TOKEN, INFLUXDB_ORG and INFLUXDB_BUCKET.
func NewDBClient(cfg config.DatabaseConfig, logger *logrus.Logger) (*DBClient, error) {
	host := firstNonEmpty(cfg.Host, os.Getenv("INFLUXDB_HOST"))
	token := firstNonEmpty(cfg.Token, os.Getenv("INFLUXDB_TOKEN"))
	org := firstNonEmpty(cfg.Org, os.Getenv("INFLUXDB_ORG"))
	bucket := firstNonEmpty(cfg.Bucket, os.Getenv("INFLUXDB_BUCKET"))

	if host == "" || token == "" || org == "" || bucket == "" {
		return nil, fmt.Errorf("missing required settings for InfluxDB connection")
	}

	client := influxdb2.NewClient(host, token)
	queryAPI := client.QueryAPI(org)

	logger.WithFields(logrus.Fields{
		"host":   host,
		"org":    org,
		"bucket": bucket,
	}).Debug("Created InfluxDB client")

	return &DBClient{
		client:   client,
		queryAPI: queryAPI,
		bucket:   bucket,
		org:      org,
		logger:   logger,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *DBClient) Close() {
	c.client.Close()
}

// row is one pivoted record: its time and its columns.
type row struct {
	time   time.Time
	values map[string]interface{}
}

func (c *DBClient) QuerySeries(ctx context.Context, src *config.SourceConfig) (*Series, error) {
	query := src.Query
	if query == "" {
		query = buildQuery(c.bucket, src)
	}

	c.logger.WithFields(logrus.Fields{
		"measurement": src.Measurement,
		"x":           src.X,
		"y":           src.Y,
	}).Debug("Querying series")

	result, err := c.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer result.Close()

	var rows []row
	for result.Next() {
		record := result.Record()
		rows = append(rows, row{time: record.Time(), values: record.Values()})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("query parsing failed: %w", result.Err())
	}

	c.logger.WithField("records", len(rows)).Debug("Query completed")
	return seriesFromRows(rows, src)
}

// buildQuery generates a Flux query selecting the configured fields of a
// measurement, pivoted so that every field is a column.
func buildQuery(bucket string, src *config.SourceConfig) string {
	start := src.Start
	if start == "" {
		start = "0"
	}
	rng := "start: " + start
	if src.Stop != "" {
		rng += ", stop: " + src.Stop
	}

	var fields []string
	for _, name := range columns(src) {
		if name != "" && name != TimeColumn {
			fields = append(fields, fmt.Sprintf(`r["_field"] == %s`, strconv.Quote(name)))
		}
	}

	tags := make([]string, 0, len(src.Tags))
	for k := range src.Tags {
		tags = append(tags, k)
	}
	sort.Strings(tags)

	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(bucket))
	fmt.Fprintf(&b, "\t|> range(%s)\n", rng)
	fmt.Fprintf(&b, "\t|> filter(fn: (r) => r[\"_measurement\"] == %s)\n", strconv.Quote(src.Measurement))
	for _, k := range tags {
		fmt.Fprintf(&b, "\t|> filter(fn: (r) => r[%s] == %s)\n", strconv.Quote(k), strconv.Quote(src.Tags[k]))
	}
	if len(fields) > 0 {
		fmt.Fprintf(&b, "\t|> filter(fn: (r) => %s)\n", strings.Join(fields, " or "))
	}
	b.WriteString("\t|> pivot(rowKey:[\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("\t|> sort(columns: [\"_time\"])\n")
	return b.String()
}

func seriesFromRows(rows []row, src *config.SourceConfig) (*Series, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("query returned no records")
	}

	cols := columns(src)
	series := &Series{}
	origin := rows[0].time
	for i, name := range cols {
		if name == "" {
			continue
		}
		values := make([]float64, len(rows))
		for j, r := range rows {
			if name == TimeColumn {
				values[j] = r.time.Sub(origin).Seconds()
				continue
			}
			v, ok := toFloat(r.values[name])
			if !ok {
				return nil, fmt.Errorf("record %d: field %q is missing or not numeric", j, name)
			}
			values[j] = v
		}
		series.assign(i, values)
	}
	return series, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
