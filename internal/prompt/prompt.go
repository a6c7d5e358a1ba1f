// Package prompt renders the generation prompt from a question and a
// dataset summary.
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"datachat/internal/summary"
)

const maxPromptSampleRows = 5

// Build renders the full prompt: the question, a dataset header, a
// per-column statistics block, a pretty-printed sample, and fixed
// answering instructions.
func Build(query string, sum summary.Summary) string {
	var b strings.Builder
	b.WriteString("You are a data analyst AI. Answer concisely using only the provided data.\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", query)
	fmt.Fprintf(&b, "**Dataset:** %s - %s rows, %d columns\n", sum.Name, formatCount(sum.RowCount), len(sum.Columns))
	fmt.Fprintf(&b, "**Columns:** %s\n\n", strings.Join(sum.Columns, ", "))
	b.WriteString("**Statistics (from complete dataset):**\n")
	b.WriteString(statisticsBlock(sum))
	b.WriteString("\n\n**Sample Data:**\n")
	b.WriteString(sampleJSON(sum.Sample))
	b.WriteString("\n\n**Instructions:**\n")
	b.WriteString("- Use EXACT numbers from statistics above\n")
	b.WriteString("- Be concise - answer directly without lengthy explanations\n")
	b.WriteString("- Use bullet points for clarity\n")
	b.WriteString("- Format key numbers with **bold**\n\n")
	b.WriteString("Answer the question:")
	return b.String()
}

// statisticsBlock renders one line per column that has statistics,
// following the summary's column order.
func statisticsBlock(sum summary.Summary) string {
	var lines []string
	for _, col := range sum.Columns {
		stats, ok := sum.Statistics[col]
		if !ok {
			continue
		}
		switch stats.Type {
		case "numeric":
			lines = append(lines, fmt.Sprintf("  • %s: %d values, Range: %s to %s, Average: %s, Sum: %s",
				col, stats.Count, formatFloat(stats.Min), formatFloat(stats.Max), formatFloat(stats.Avg), formatFloat(stats.Sum)))
		case "categorical":
			top := stats.TopValues
			if len(top) > 3 {
				top = top[:3]
			}
			pairs := make([]string, len(top))
			for i, tv := range top {
				pairs[i] = fmt.Sprintf("%s (%s)", tv.Value, tv.Percentage)
			}
			lines = append(lines, fmt.Sprintf("  • %s: %d unique values, Top: %s",
				col, stats.UniqueCount, strings.Join(pairs, ", ")))
		}
	}
	if len(lines) == 0 {
		return "No statistics available"
	}
	return strings.Join(lines, "\n")
}

// sampleJSON pretty-prints at most the first 5 sample rows.
func sampleJSON(sample []summary.Row) string {
	if len(sample) > maxPromptSampleRows {
		sample = sample[:maxPromptSampleRows]
	}
	if sample == nil {
		sample = []summary.Row{}
	}
	out, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCount renders an integer with thousands separators, e.g. 12,345.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
