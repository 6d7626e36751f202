package match

import (
	"rowmatch/internal/excel"
	"rowmatch/internal/logger"
)

// MatchedRow is a source row whose key was found in the lookup set, with its
// cells already resolved and converted for output.
type MatchedRow struct {
	SourceRow int
	Key       string
	Cells     []excel.Cell
}

// SheetMatch is the outcome of matching one source sheet.
type SheetMatch struct {
	Sheet       string
	KeyColumn   int
	HeaderRow   int
	Width       int
	Header      []excel.Cell
	DateColumns map[int]bool
	Rows        []MatchedRow
	// Merges are the source sheet's merged ranges, remapped when aggregated.
	Merges []excel.Range
}

// Matcher filters the rows of source tables against a lookup set.
type Matcher struct {
	Lookup    KeySet
	Column    ColumnRef
	HeaderRow int
	Dates     DateRules
}

// MatchTable walks every row of the table except the header row and keeps
// the rows whose key, taken from a merged anchor when the key cell is
// merged, is in the lookup set. Original row and column order is kept.
func (m *Matcher) MatchTable(table *excel.Table) (*SheetMatch, error) {
	headerRow := m.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}

	keyCol, err := m.Column.Resolve(table, headerRow)
	if err != nil {
		return nil, err
	}

	merges := newMergeIndex(table.Merges)
	width := table.MaxCol()
	dateColumns := m.Dates.DateColumns(table, headerRow)

	result := &SheetMatch{
		Sheet:       table.Name,
		KeyColumn:   keyCol,
		HeaderRow:   headerRow,
		Width:       width,
		DateColumns: dateColumns,
		Merges:      table.Merges,
	}

	header := table.Row(headerRow, width)
	result.Header = make([]excel.Cell, width)
	for i, cell := range header {
		result.Header[i] = m.Dates.Convert(cell, false)
	}

	for row := 1; row <= table.MaxRow(); row++ {
		if row == headerRow {
			continue
		}

		keyCell := merges.keyCell(table, row, keyCol)
		if keyCell.IsEmpty() {
			continue
		}
		key := NormalizeKey(keyCell.Value)
		if !m.Lookup.Contains(key) {
			continue
		}

		cells := merges.resolveRow(table, row, width)
		for i := range cells {
			cells[i] = m.Dates.Convert(cells[i], dateColumns[i+1])
		}
		result.Rows = append(result.Rows, MatchedRow{SourceRow: row, Key: key, Cells: cells})
	}

	logger.Debug("Matched sheet",
		"sheet", table.Name,
		"key_column", m.Column.String(),
		"key_index", keyCol,
		"rows_scanned", table.MaxRow(),
		"rows_matched", len(result.Rows),
		"date_columns", len(dateColumns))
	return result, nil
}
