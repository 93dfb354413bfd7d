package chainlens

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const strengthPrecision = 3

func WriteJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// reportWriter remembers the first failed write. Later writes are dropped.
type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) Write(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.w.Write(p)
	if err != nil {
		r.err = err
	}
	return n, err
}

// RenderReport writes the report as plain text tables.
func RenderReport(w io.Writer, report *Report) error {
	output := &reportWriter{w: w}
	fmt.Fprintf(output, "Run %s: %d files, %d rows, rolling window %d\n\n", report.RunID, report.Files, report.Rows, report.RollingWindow)
	renderStrengths(output, report)
	fmt.Fprintf(output, "\nOverall %s Bias\n", report.Overall)
	if report.OIImbalanceMean != nil {
		fmt.Fprintf(output, "Mean OI imbalance: %s\n", formatFloat(report.OIImbalanceMean))
	}
	if report.Summary.Timestamp != nil {
		fmt.Fprintf(output, "\nOne-liner signals (%s)\n", getTimeString(*report.Summary.Timestamp))
	} else {
		fmt.Fprintln(output, "\nOne-liner signals")
	}
	for _, line := range report.Summary.Lines {
		fmt.Fprintln(output, line)
	}
	if len(report.Columns) > 0 {
		fmt.Fprintln(output)
		renderColumns(output, report.Columns)
	}
	if len(report.Quadrants) > 0 {
		fmt.Fprintln(output)
		renderQuadrants(output, report.Quadrants)
	}
	if output.err != nil {
		return fmt.Errorf("failed to render report: %w", output.err)
	}
	return nil
}

func renderStrengths(w io.Writer, report *Report) {
	t := newTable(w, "Composite Strength Score (Weighted)")
	header := prettytable.Row{"Strike"}
	for _, series := range report.Chart.Series {
		header = append(header, series.Name)
	}
	header = append(header, "Bias")
	t.AppendHeader(header)
	for i, record := range report.Strengths {
		row := prettytable.Row{strconv.FormatFloat(record.Strike, 'f', -1, 64)}
		for _, series := range report.Chart.Series {
			row = append(row, formatFloat(series.Values[i]))
		}
		row = append(row, string(record.Bias))
		t.AppendRow(row)
	}
	t.Render()
}

func renderColumns(w io.Writer, columns []ColumnStats) {
	t := newTable(w, "Derived columns")
	t.AppendHeader(prettytable.Row{"Column", "Count", "Nil ratio", "Min", "Max", "Mean", "Std dev"})
	for _, column := range columns {
		t.AppendRow(prettytable.Row{
			column.Name,
			column.Count,
			fmt.Sprintf("%.2f", column.NilRatio),
			fmt.Sprintf("%.3f", column.Min),
			fmt.Sprintf("%.3f", column.Max),
			fmt.Sprintf("%.3f", column.Mean),
			fmt.Sprintf("%.3f", column.StdDev),
		})
	}
	t.Render()
}

func renderQuadrants(w io.Writer, quadrants []QuadrantCount) {
	t := newTable(w, "Quadrants")
	t.AppendHeader(prettytable.Row{"Side", "Quadrant", "Rows"})
	for _, quadrant := range quadrants {
		t.AppendRow(prettytable.Row{quadrant.Side, string(quadrant.Quadrant), quadrant.Count})
	}
	t.Render()
}

func newTable(w io.Writer, title string) prettytable.Writer {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(prettytable.StyleLight)
	// Column names are data keys, keep their case
	t.Style().Format.Header = text.FormatDefault
	t.Style().Title.Format = text.FormatDefault
	return t
}

func formatFloat(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', strengthPrecision, 64)
}
