package match

import (
	"sort"

	"rowmatch/internal/excel"
)

type cellPos struct {
	row int
	col int
}

// mergeIndex maps every cell covered by a merged range to that range.
type mergeIndex struct {
	ranges []excel.Range
	byCell map[cellPos]int
}

func newMergeIndex(ranges []excel.Range) *mergeIndex {
	idx := &mergeIndex{
		ranges: ranges,
		byCell: make(map[cellPos]int),
	}
	for i, r := range ranges {
		for row := r.MinRow; row <= r.MaxRow; row++ {
			for col := r.MinCol; col <= r.MaxCol; col++ {
				idx.byCell[cellPos{row, col}] = i
			}
		}
	}
	return idx
}

func (m *mergeIndex) rangeAt(row, col int) (excel.Range, bool) {
	i, ok := m.byCell[cellPos{row, col}]
	if !ok {
		return excel.Range{}, false
	}
	return m.ranges[i], true
}

// keyCell returns the cell that decides a row's key: the anchor of a merged
// range spanning the key column, or the row's own cell.
func (m *mergeIndex) keyCell(table *excel.Table, row, keyCol int) excel.Cell {
	if r, ok := m.rangeAt(row, keyCol); ok {
		return table.Cell(r.MinRow, r.MinCol)
	}
	return table.Cell(row, keyCol)
}

// resolveRow returns the row's cells with every merged cell carrying the
// value of its range's anchor.
func (m *mergeIndex) resolveRow(table *excel.Table, row, width int) []excel.Cell {
	cells := table.Row(row, width)
	for col := 1; col <= width; col++ {
		r, ok := m.rangeAt(row, col)
		if !ok || (r.MinRow == row && r.MinCol == col) {
			continue
		}
		anchor := table.Cell(r.MinRow, r.MinCol)
		cells[col-1].Value = anchor.Value
		if cells[col-1].Format == "" || cells[col-1].Format == excel.GeneralFormat {
			cells[col-1].Format = anchor.Format
		}
	}
	return cells
}

// remapMerges rebuilds source merged ranges for the output sheet. placed
// maps source rows to the output rows they were written to. Each source
// range yields one output range per run of matched rows that are adjacent
// both in the source and in the output. Ranges reaching into the header row
// or above are left out.
func remapMerges(ranges []excel.Range, placed map[int]int, headerRow int) []excel.Range {
	var out []excel.Range
	for _, r := range ranges {
		if r.MinRow <= headerRow {
			continue
		}

		var rows []int
		for row := r.MinRow; row <= r.MaxRow; row++ {
			if _, ok := placed[row]; ok {
				rows = append(rows, row)
			}
		}
		sort.Ints(rows)

		for start := 0; start < len(rows); {
			end := start
			for end+1 < len(rows) &&
				rows[end+1] == rows[end]+1 &&
				placed[rows[end+1]] == placed[rows[end]]+1 {
				end++
			}
			merged := excel.Range{
				MinRow: placed[rows[start]],
				MinCol: r.MinCol,
				MaxRow: placed[rows[end]],
				MaxCol: r.MaxCol,
			}
			if merged.Cells() > 1 {
				out = append(out, merged)
			}
			start = end + 1
		}
	}
	return out
}

// headerMerges returns the ranges lying entirely inside the header row,
// moved to outputRow.
func headerMerges(ranges []excel.Range, headerRow, outputRow int) []excel.Range {
	var out []excel.Range
	for _, r := range ranges {
		if r.MinRow != headerRow || r.MaxRow != headerRow || r.Cells() < 2 {
			continue
		}
		out = append(out, excel.Range{MinRow: outputRow, MinCol: r.MinCol, MaxRow: outputRow, MaxCol: r.MaxCol})
	}
	return out
}
