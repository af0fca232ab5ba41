package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// attemptTable renders journal or summary rows. The score column is
// right-aligned; everything else stays left. Short rows are padded with
// empty cells so ragged input never panics.
func attemptTable(headers []string, rows [][]string, scoreColumn int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if scoreColumn >= 0 && scoreColumn < columns {
		tw.SetColumnConfigs([]table.ColumnConfig{{
			Number:      scoreColumn + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		}})
	}

	return tw.Render()
}
