package match

import (
	"testing"

	"rowmatch/internal/excel"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// tableOf builds an in-memory table; nil values stay empty cells.
func tableOf(name string, rows ...[]any) *excel.Table {
	table := excel.NewTable(name)
	for r, row := range rows {
		cells := make([]excel.Cell, len(row))
		for c, v := range row {
			if i, ok := v.(int); ok {
				v = float64(i)
			}
			cells[c] = excel.Cell{Value: v, Format: excel.GeneralFormat}
		}
		table.SetRow(r+1, cells)
	}
	return table
}

type sheetData struct {
	name   string
	rows   [][]any
	merges [][2]string
	styles map[string]string // cell range "D2:D6" -> custom number format
}

// writeWorkbook saves a workbook with the given sheets; the first sheet is active.
func writeWorkbook(t *testing.T, path string, sheets ...sheetData) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &values))
		}
		for _, merge := range sheet.merges {
			require.NoError(t, f.MergeCell(sheet.name, merge[0], merge[1]))
		}
		for ref, code := range sheet.styles {
			r, err := excel.ParseRange(ref)
			require.NoError(t, err)
			custom := code
			style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
			require.NoError(t, err)
			require.NoError(t, f.SetCellStyle(sheet.name, r.TopLeft(), r.BottomRight(), style))
		}
	}

	f.SetActiveSheet(0)
	require.NoError(t, f.SaveAs(path))
}

func readSheet(t *testing.T, path, sheet string) *excel.Table {
	t.Helper()

	editor, err := excel.OpenFile(path)
	require.NoError(t, err)
	defer editor.Close()

	table, err := editor.ReadTable(sheet)
	require.NoError(t, err)
	return table
}
