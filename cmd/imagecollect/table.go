package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// reportTable is a titled, rounded table. Cells may span several lines; set
// separateRows when they do so each row stays readable.
type reportTable struct {
	title        string
	headers      []string
	aligns       []columnAlignment
	separateRows bool
	rows         [][]string
}

func (t *reportTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *reportTable) render() string {
	columns := len(t.headers)
	if columns == 0 || len(t.rows) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = t.separateRows

	header := make(table.Row, columns)
	for i, h := range t.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range t.rows {
		r := make(table.Row, columns)
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(t.aligns) && t.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	var b strings.Builder
	if t.title != "" {
		b.WriteString(t.title)
		b.WriteString(":\n")
	}
	b.WriteString(tw.Render())
	return b.String()
}

// renderTable renders an untitled table in one call.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	t := reportTable{headers: headers, aligns: aligns, rows: rows}
	return t.render()
}
