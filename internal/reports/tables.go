// Package reports renders emotion reports as tables, bar charts, and the
// artifact set published for every run.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/JaimeStill/emotive/internal/emotions"
)

// Table is a header plus string rows, shared by the CSV and text writers.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// UnconditionalTable lays out label, count, proportion per observed label.
func UnconditionalTable(r emotions.UnconditionalReport) Table {
	t := Table{
		Title:  "All headlines",
		Header: []string{"label", "count", "proportion"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.Label,
			strconv.Itoa(row.Count),
			formatProportion(row.Proportion),
		})
	}
	return t
}

// ConditionalTable lays out one row per label and one proportion column per
// observed category, named proportion_<category> in lower case.
func ConditionalTable(r emotions.ConditionalReport) Table {
	t := Table{
		Title:  "By category",
		Header: []string{"label"},
	}
	categories := r.Categories()
	for _, c := range categories {
		t.Header = append(t.Header, "proportion_"+strings.ToLower(c))
	}

	for _, label := range r.Labels {
		row := []string{label}
		for _, c := range categories {
			cell, _ := r.Lookup(label, c)
			row = append(row, formatProportion(cell.Proportion))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV writes t with its header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// WriteText renders t as an aligned terminal table.
func WriteText(w io.Writer, t Table) {
	if t.Title != "" {
		fmt.Fprintf(w, "%s\n", t.Title)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(shorten(t.Rows))
	table.Render()
}

func formatProportion(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// shorten rounds proportion cells to three places for terminal display.
func shorten(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = cell
			if j == 0 || !strings.Contains(cell, ".") {
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				out[i][j] = strconv.FormatFloat(f, 'f', 3, 64)
			}
		}
	}
	return out
}
