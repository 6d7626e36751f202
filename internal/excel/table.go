package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell is one worksheet cell: its typed value and its number format code.
// Value is nil, string, float64, bool or time.Time.
type Cell struct {
	Value  any
	Format string
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	if c.Value == nil {
		return true
	}
	if s, ok := c.Value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Range is a rectangular cell range, 1-based and inclusive on both ends.
type Range struct {
	MinRow int
	MinCol int
	MaxRow int
	MaxCol int
}

// Cells returns how many cells the range covers.
func (r Range) Cells() int {
	return (r.MaxRow - r.MinRow + 1) * (r.MaxCol - r.MinCol + 1)
}

func (r Range) TopLeft() string {
	name, _ := excelize.CoordinatesToCellName(r.MinCol, r.MinRow)
	return name
}

func (r Range) BottomRight() string {
	name, _ := excelize.CoordinatesToCellName(r.MaxCol, r.MaxRow)
	return name
}

func (r Range) String() string {
	return r.TopLeft() + ":" + r.BottomRight()
}

// ParseRange parses a reference such as "C3:C4". A single cell is a 1x1 range.
func ParseRange(ref string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(ref), ":")
	if len(parts) == 0 || len(parts) > 2 {
		return Range{}, fmt.Errorf("invalid range %q", ref)
	}
	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		endCol, endRow, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("invalid range %q: %w", ref, err)
		}
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	return Range{MinRow: startRow, MinCol: startCol, MaxRow: endRow, MaxCol: endCol}, nil
}

// Table is the in-memory grid of one worksheet.
type Table struct {
	Name   string
	Rows   [][]Cell
	Merges []Range
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) MaxRow() int {
	return len(t.Rows)
}

// MaxCol returns the width of the widest row.
func (t *Table) MaxCol() int {
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the cell at the 1-based coordinates, or an empty cell.
func (t *Table) Cell(row, col int) Cell {
	if row < 1 || row > len(t.Rows) {
		return Cell{}
	}
	cells := t.Rows[row-1]
	if col < 1 || col > len(cells) {
		return Cell{}
	}
	return cells[col-1]
}

// Row returns a copy of the 1-based row padded to width cells.
func (t *Table) Row(row, width int) []Cell {
	out := make([]Cell, width)
	if row < 1 || row > len(t.Rows) {
		return out
	}
	copy(out, t.Rows[row-1])
	return out
}

// SetRow replaces a whole 1-based row.
func (t *Table) SetRow(row int, cells []Cell) {
	for len(t.Rows) < row {
		t.Rows = append(t.Rows, nil)
	}
	t.Rows[row-1] = cells
}

// HeaderTexts returns the trimmed text of each cell in the given row.
func (t *Table) HeaderTexts(row int) []string {
	cells := t.Row(row, t.MaxCol())
	headers := make([]string, len(cells))
	for i, cell := range cells {
		if cell.Value != nil {
			headers[i] = strings.TrimSpace(fmt.Sprint(cell.Value))
		}
	}
	return headers
}
