package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"kbmatch/internal/reconcile"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(title string, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderStats prints fill rates per collection.
func renderStats(stats []reconcile.CollectionStats) string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Collection,
			fmt.Sprintf("%d", s.Total),
			countAndPercent(s, s.Resolved),
			countAndPercent(s, s.WithGender),
			countAndPercent(s, s.WithCoords),
			countAndPercent(s, s.WithVIAF),
		})
	}
	return renderTable("Statistics",
		[]string{"Collection", "Records", "Resolved", "Gender", "Coordinates", "VIAF"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight})
}

func countAndPercent(s reconcile.CollectionStats, part int) string {
	return fmt.Sprintf("%d (%.1f%%)", part, s.Percent(part))
}

// renderSummaries prints what each pass of a run did.
func renderSummaries(summaries []reconcile.Summary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Collection,
			fmt.Sprintf("%d", s.Imported),
			fmt.Sprintf("%d", s.Processed),
			fmt.Sprintf("%d", s.Resolved),
			fmt.Sprintf("%d", s.Skipped),
			fmt.Sprintf("%d", s.Refreshed),
			fmt.Sprintf("%d", s.Reset),
			fmt.Sprintf("%d", s.Inferred),
		})
	}
	return renderTable("Run",
		[]string{"Collection", "Imported", "Processed", "Resolved", "Skipped", "Refreshed", "Reset", "Inferred"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight})
}
