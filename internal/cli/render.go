package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"rowmatch/internal/excel"
	"rowmatch/internal/match"
	"rowmatch/internal/suggest"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderResult(w io.Writer, result *match.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Source", "Sheet", "Matched", "Status"})
	for _, f := range result.Files {
		status := "ok"
		if f.Skipped {
			status = "skipped: " + f.Error
		}
		t.AppendRow(table.Row{f.Path, f.Sheet, f.Matched, status})
	}
	t.AppendFooter(table.Row{"", "Total", result.Matched, ""})
	t.Render()

	_, _ = fmt.Fprintf(w, "Lookup keys: %d\n", result.LookupKeys)
	if result.SavedPath != "" {
		_, _ = fmt.Fprintf(w, "Saved to: %s\n", result.SavedPath)
	}
	if !result.Finished.IsZero() {
		_, _ = fmt.Fprintf(w, "Took %s\n", result.Finished.Sub(result.Started).Round(time.Millisecond))
	}
}

func renderSheet(w io.Writer, sheet *excel.Table, active bool, headerRow int, dateCols map[int]bool) {
	title := fmt.Sprintf("%s (%d rows × %d columns)", sheet.Name, sheet.MaxRow(), sheet.MaxCol())
	if active {
		title += " [active]"
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Column", "Header", "Date"})
	for i, header := range sheet.HeaderTexts(headerRow) {
		col := i + 1
		letter, _ := excelize.ColumnNumberToName(col)
		date := ""
		if dateCols[col] {
			date = "yes"
		}
		t.AppendRow(table.Row{col, letter, header, date})
	}
	t.Render()

	if len(sheet.Merges) > 0 {
		refs := make([]string, len(sheet.Merges))
		for i, r := range sheet.Merges {
			refs[i] = r.String()
		}
		_, _ = fmt.Fprintf(w, "Merged ranges: %s\n", strings.Join(refs, ", "))
	}
	_, _ = fmt.Fprintln(w)
}

func renderScan(w io.Writer, summaries []*excel.WorkbookSummary) {
	if len(summaries) == 0 {
		_, _ = fmt.Fprintln(w, "(no workbooks)")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Workbook", "Sheet", "Rows", "Cols", "Merges", "Headers"})
	for _, wb := range summaries {
		for _, sheet := range wb.Sheets {
			name := sheet.Name
			if sheet.Active {
				name += " *"
			}
			t.AppendRow(table.Row{wb.Path, name, sheet.Rows, sheet.Cols, sheet.MergeCount, joinHeaders(sheet.Headers, 6)})
		}
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d workbooks, * = active sheet)\n", len(summaries))
}

func joinHeaders(headers []string, limit int) string {
	var kept []string
	for _, h := range headers {
		if h != "" {
			kept = append(kept, h)
		}
	}
	if len(kept) > limit {
		return strings.Join(kept[:limit], ", ") + fmt.Sprintf(", … (+%d)", len(kept)-limit)
	}
	return strings.Join(kept, ", ")
}

func renderPairs(w io.Writer, pairs []suggest.Pair) {
	if len(pairs) == 0 {
		_, _ = fmt.Fprintln(w, "(no suggestions)")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Source column", "Lookup column", "Confidence", "Origin"})
	for _, p := range pairs {
		t.AppendRow(table.Row{p.Source, p.Lookup, fmt.Sprintf("%.2f", p.Confidence), p.Origin})
	}
	t.Render()
}
