// Package summary reduces an arbitrary-size tabular dataset into a
// bounded-size digest: a small row sample plus per-column statistics.
package summary

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Column describes one declared dataset column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row maps column names to loosely typed cell values as decoded from JSON:
// nil, float64, string, or bool.
type Row map[string]any

// ValueCount is one entry of a categorical column's most frequent values.
// Percentage is a pre-formatted string like "60.0%"; the frontend renders
// it verbatim.
type ValueCount struct {
	Value      string `json:"value"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// ColumnStats holds aggregates for a single column. Type discriminates the
// variant: "numeric" fills Min/Max/Avg/Sum, "categorical" fills
// UniqueCount/TopValues.
type ColumnStats struct {
	Type        string       `json:"type"`
	Count       int          `json:"count"`
	Min         float64      `json:"min,omitempty"`
	Max         float64      `json:"max,omitempty"`
	Avg         float64      `json:"avg,omitempty"`
	Sum         float64      `json:"sum,omitempty"`
	UniqueCount int          `json:"unique_count,omitempty"`
	TopValues   []ValueCount `json:"top_values,omitempty"`
}

// Summary is the bounded digest of a dataset, rebuilt per request.
// Columns and ColumnTypes list every declared column; Statistics only
// holds entries for number/string columns that produced usable values.
type Summary struct {
	Name        string                 `json:"name"`
	RowCount    int                    `json:"row_count"`
	Columns     []string               `json:"columns"`
	ColumnTypes map[string]string      `json:"column_types"`
	Statistics  map[string]ColumnStats `json:"statistics"`
	Sample      []Row                  `json:"sample"`
}

const (
	maxSampleRows = 10
	maxTopValues  = 5
)

// Summarize builds the digest for the given rows and declared columns.
// It is pure and deterministic: ties between equally frequent categorical
// values keep their first-encounter order.
func Summarize(rows []Row, columns []Column, name string) Summary {
	names := make([]string, len(columns))
	types := make(map[string]string, len(columns))
	stats := make(map[string]ColumnStats)

	for i, col := range columns {
		names[i] = col.Name
		types[col.Name] = col.Type

		switch col.Type {
		case "number":
			if s, ok := numericStats(rows, col.Name); ok {
				stats[col.Name] = s
			}
		case "string":
			if s, ok := categoricalStats(rows, col.Name); ok {
				stats[col.Name] = s
			}
		}
	}

	sample := sampleRows(rows)
	if len(sample) > maxSampleRows {
		sample = sample[:maxSampleRows]
	}

	return Summary{
		Name:        name,
		RowCount:    len(rows),
		Columns:     names,
		ColumnTypes: types,
		Statistics:  stats,
		Sample:      sample,
	}
}

// sampleRows picks a size-tiered subset so the digest stays bounded no
// matter how large the dataset is.
func sampleRows(rows []Row) []Row {
	n := len(rows)
	switch {
	case n <= 10:
		return rows
	case n <= 100:
		return rows[:10]
	case n <= 500:
		// First 5 + last 5
		out := make([]Row, 0, 10)
		out = append(out, rows[:5]...)
		out = append(out, rows[n-5:]...)
		return out
	default:
		// First 5 + middle 2 + last 3
		mid := n / 2
		out := make([]Row, 0, 10)
		out = append(out, rows[:5]...)
		out = append(out, rows[mid:mid+2]...)
		out = append(out, rows[n-3:]...)
		return out
	}
}

// numericStats aggregates a "number" column over the whole dataset.
// Values that fail float conversion are skipped individually; the column is
// omitted (ok=false) only when no value converts at all.
func numericStats(rows []Row, col string) (ColumnStats, bool) {
	var values []float64
	for _, row := range rows {
		v, present := row[col]
		if !present || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		values = append(values, f)
	}
	if len(values) == 0 {
		return ColumnStats{}, false
	}

	min, max := values[0], values[0]
	var sum float64
	for _, f := range values {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
	}
	return ColumnStats{
		Type:  "numeric",
		Count: len(values),
		Min:   round2(min),
		Max:   round2(max),
		Avg:   round2(sum / float64(len(values))),
		Sum:   round2(sum),
	}, true
}

// categoricalStats aggregates a "string" column: total count, distinct
// count, and the top-5 most frequent values with percentage shares.
func categoricalStats(rows []Row, col string) (ColumnStats, bool) {
	counts := make(map[string]int)
	var order []string // first-encounter order, the tie-break for equal counts
	total := 0
	for _, row := range rows {
		v := row[col]
		if !truthy(v) {
			continue
		}
		s := stringify(v)
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
		total++
	}
	if total == 0 {
		return ColumnStats{}, false
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	top := order
	if len(top) > maxTopValues {
		top = top[:maxTopValues]
	}

	topValues := make([]ValueCount, len(top))
	for i, val := range top {
		topValues[i] = ValueCount{
			Value:      val,
			Count:      counts[val],
			Percentage: fmt.Sprintf("%.1f%%", float64(counts[val])/float64(total)*100),
		}
	}
	return ColumnStats{
		Type:        "categorical",
		Count:       total,
		UniqueCount: len(counts),
		TopValues:   topValues,
	}, true
}

// toFloat attempts float conversion of a loosely typed cell value.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// truthy filters categorical values: nil, empty string, zero, and false
// are all excluded before counting.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case float64:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
