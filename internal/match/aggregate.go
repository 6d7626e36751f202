package match

import "rowmatch/internal/excel"

// Aggregator collects matched rows from several source sheets into a single
// output table: one header row followed by the data rows in arrival order.
type Aggregator struct {
	out           *excel.Table
	headerWritten bool
	nextRow       int
}

func NewAggregator(sheetName string) *Aggregator {
	return &Aggregator{
		out:     excel.NewTable(sheetName),
		nextRow: 1,
	}
}

// Add appends the rows of one sheet match and returns how many were added.
// The first match that contributes rows also supplies the header row.
func (a *Aggregator) Add(m *SheetMatch) int {
	if m == nil || len(m.Rows) == 0 {
		return 0
	}

	if !a.headerWritten {
		a.out.SetRow(1, m.Header)
		a.out.Merges = append(a.out.Merges, headerMerges(m.Merges, m.HeaderRow, 1)...)
		a.headerWritten = true
		a.nextRow = 2
	}

	placed := make(map[int]int, len(m.Rows))
	for _, row := range m.Rows {
		a.out.SetRow(a.nextRow, row.Cells)
		placed[row.SourceRow] = a.nextRow
		a.nextRow++
	}

	a.out.Merges = append(a.out.Merges, remapMerges(m.Merges, placed, m.HeaderRow)...)
	return len(m.Rows)
}

// Total returns the number of data rows collected so far.
func (a *Aggregator) Total() int {
	if !a.headerWritten {
		return 0
	}
	return a.nextRow - 2
}

func (a *Aggregator) Table() *excel.Table {
	return a.out
}
