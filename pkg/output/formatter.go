// Package output renders command results as json, yaml, csv or an aligned
// text table.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Formatter serializes a result
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// Tabular is implemented by results with a natural row layout, such as
// per-frame feature tracks
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// NewFormatter returns the formatter for a format name
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return &JSONFormatter{}, nil
	case "yaml", "yml":
		return &YAMLFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "table":
		return &TableFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return append(out, '\n'), nil
}

type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, pretty bool) ([]byte, error) {
	// round trip through json so field names follow the json tags
	generic, err := toGeneric(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if pretty {
		enc.SetIndent(2)
	}
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVFormatter writes Tabular rows, or flattened key/value pairs otherwise
type CSVFormatter struct{}

func (f *CSVFormatter) Format(data any, pretty bool) ([]byte, error) {
	var header []string
	var rows [][]string

	if t, ok := data.(Tabular); ok {
		header, rows = t.Header(), t.Rows()
	} else {
		pairs, err := Flatten(data)
		if err != nil {
			return nil, err
		}
		header = []string{"key", "value"}
		for _, p := range pairs {
			rows = append(rows, []string{p.Key, p.Value})
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

// TableFormatter prints an aligned key/value table. Numeric arrays are
// summarized rather than listed.
type TableFormatter struct{}

var titleCaser = cases.Title(language.English, cases.NoLower)

func (f *TableFormatter) Format(data any, pretty bool) ([]byte, error) {
	pairs, err := Flatten(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, p := range pairs {
		key := p.Key
		if pretty {
			key = Title(key)
		}
		fmt.Fprintf(tw, "%s\t%s\n", key, p.Value)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush table: %w", err)
	}
	return buf.Bytes(), nil
}

// Title turns a snake_case or dotted key into a display label
func Title(key string) string {
	r := strings.NewReplacer("_", " ", ".", " / ")
	return titleCaser.String(r.Replace(key))
}

// Pair is one flattened leaf of a result
type Pair struct {
	Key   string
	Value string
}

// Flatten walks the json form of data and returns its leaves sorted by
// dotted key. Numeric arrays collapse into a SeriesSummary.
func Flatten(data any) ([]Pair, error) {
	generic, err := toGeneric(data)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	flatten("", generic, &pairs)
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

func flatten(prefix string, v any, pairs *[]Pair) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(join(prefix, k), child, pairs)
		}
	case []any:
		if nums, ok := numeric(val); ok {
			*pairs = append(*pairs, Pair{Key: prefix, Value: SeriesSummary(nums)})
			return
		}
		for i, child := range val {
			flatten(join(prefix, strconv.Itoa(i)), child, pairs)
		}
	case nil:
		*pairs = append(*pairs, Pair{Key: prefix, Value: "null"})
	case float64:
		*pairs = append(*pairs, Pair{Key: prefix, Value: strconv.FormatFloat(val, 'f', -1, 64)})
	default:
		*pairs = append(*pairs, Pair{Key: prefix, Value: fmt.Sprint(val)})
	}
}

// SeriesSummary describes a numeric track by count, mean and range
func SeriesSummary(values []float64) string {
	if len(values) == 0 {
		return "n=0"
	}
	return fmt.Sprintf("n=%d mean=%.3f min=%.3f max=%.3f",
		len(values), stat.Mean(values, nil), floats.Min(values), floats.Max(values))
}

func numeric(values []any) ([]float64, bool) {
	if len(values) == 0 {
		return []float64{}, true
	}
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := v.(float64)
		if !ok || math.IsNaN(f) {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func toGeneric(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return generic, nil
}
