package app

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/pkg/units"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

// RenderSummary prints the end-of-batch summary
func RenderSummary(w io.Writer, s *domain.StatsSnapshot) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Summary", ""})
	t.AppendRows([]table.Row{
		{"Total", s.Total},
		{"Downloaded", s.Downloaded},
		{"Skipped", s.Skipped},
		{"Failed", s.Failed},
		{"  of which missed", s.Missed},
		{"Downloaded %", s.PercentageString()},
		{"Elapsed", s.ElapsedString()},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Answers size", units.FormatBytes(s.AnswersSize)},
		{"Assessment size", units.FormatBytes(s.AssessmentSize)},
		{"Exemplar size", units.FormatBytes(s.ExemplarSize)},
		{"Total size", units.FormatBytes(s.TotalSize)},
		{"Transferred", units.FormatBytes(s.BytesTransferred)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

// RenderRuns prints the run history, newest first
func RenderRuns(w io.Writer, runs []*domain.Run) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Started", "Status", "Standards", "Downloaded", "Skipped", "Failed", "%"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.Standards,
			r.Downloaded,
			r.Skipped,
			r.Failed,
			fmt.Sprintf("%.2f", r.Percentage),
		})
	}
	t.Render()
}

// RenderTasks prints the task outcomes of one run
func RenderTasks(w io.Writer, records []*domain.TaskRecord) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Standard", "Year", "Kind", "Outcome", "Provider", "Size", "Detail"})
	for _, r := range records {
		size := ""
		if r.Bytes > 0 {
			size = units.FormatBytes(r.Bytes)
		}
		t.AppendRow(table.Row{r.Standard, r.Year, r.Kind, r.Outcome, r.Provider, size, r.Detail})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
	})
	t.Render()
}
