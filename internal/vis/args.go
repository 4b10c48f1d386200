package vis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Args is the keyword mapping accepted by every plotting primitive. Values
// usually arrive straight from YAML, so numbers may be ints or floats and
// booleans may be strings.
type Args map[string]interface{}

// Default is a named default value, merged against Args by getParams.
type Default struct {
	Name  string
	Value interface{}
}

func (a Args) Has(key string) bool {
	if a == nil {
		return false
	}
	_, ok := a[key]
	return ok
}

func (a Args) String(key, def string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (a Args) Float(key string, def float64) float64 {
	if f, ok := toFloat(a[key]); ok {
		return f
	}
	return def
}

func (a Args) Bool(key string, def bool) bool {
	if b, ok := toBool(a[key]); ok {
		return b
	}
	return def
}

var (
	boolArgs  = []string{"silent", "shaded"}
	floatArgs = []string{
		"alpha", "linewidth", "head_width", "head_length", "shadedalpha",
		"xmin", "xmax", "ymin", "ymax", "zmin", "zmax",
	}
)

// check rejects values of known keys that cannot be read as the type the
// primitives expect. Nil values count as absent.
func (a Args) check() error {
	for _, key := range boolArgs {
		if v := a[key]; v != nil {
			if _, ok := toBool(v); !ok {
				return fmt.Errorf("argument %s: %v is not a boolean", key, v)
			}
		}
	}
	for _, key := range floatArgs {
		if v := a[key]; v != nil {
			if _, ok := toFloat(v); !ok {
				return fmt.Errorf("argument %s: %v is not a number", key, v)
			}
		}
	}
	return nil
}

// Keys returns the keys in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "t", "true", "y", "yes", "on":
			return true, true
		case "0", "f", "false", "n", "no", "off":
			return false, true
		}
	}
	return false, false
}

// getParams merges args against the defaults list: every default name is
// present in the result, taking the args value when the key was given.
func getParams(defaults []Default, args Args) Args {
	params := make(Args, len(defaults))
	for _, d := range defaults {
		if v, ok := args[d.Name]; ok {
			params[d.Name] = v
		} else {
			params[d.Name] = d.Value
		}
	}
	return params
}
