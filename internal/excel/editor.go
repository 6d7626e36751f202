package excel

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	ErrNoSheets          = errors.New("workbook has no sheets")
)

type Editor struct {
	file     *excelize.File
	filepath string

	// style id -> format code, for reading
	formats map[int]string
	// format code -> style id, for writing
	styles map[string]int
}

func newEditor(file *excelize.File, path string) *Editor {
	return &Editor{
		file:     file,
		filepath: path,
		formats:  make(map[int]string),
		styles:   make(map[string]int),
	}
}

// OpenFile opens an existing Excel file
func OpenFile(path string) (*Editor, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return newEditor(file, path), nil
}

// CreateNewFile creates a new Excel file in memory
func CreateNewFile() *Editor {
	return newEditor(excelize.NewFile(), "")
}

func checkExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return nil
	case ".xls":
		return fmt.Errorf("%w: %s (save it as .xlsx first)", ErrUnsupportedFormat, path)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// GetSheetNames returns all sheet names in the workbook
func (e *Editor) GetSheetNames() []string {
	return e.file.GetSheetList()
}

// ActiveSheet returns the name of the sheet that is active when the workbook opens.
func (e *Editor) ActiveSheet() (string, error) {
	name := e.file.GetSheetName(e.file.GetActiveSheetIndex())
	if name == "" {
		sheets := e.file.GetSheetList()
		if len(sheets) == 0 {
			return "", ErrNoSheets
		}
		name = sheets[0]
	}
	return name, nil
}

// ResolveSheet returns the requested sheet if the workbook has it, otherwise
// the active sheet. The boolean reports whether the requested name was found.
func (e *Editor) ResolveSheet(name string) (string, bool, error) {
	if name != "" {
		for _, sheet := range e.file.GetSheetList() {
			if sheet == name {
				return sheet, true, nil
			}
		}
	}
	active, err := e.ActiveSheet()
	return active, false, err
}

// RenameSheet changes a sheet's name
func (e *Editor) RenameSheet(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	return e.file.SetSheetName(oldName, newName)
}

// GetMergedRanges returns every merged range of a sheet.
func (e *Editor) GetMergedRanges(sheet string) ([]Range, error) {
	merged, err := e.file.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get merged cells of %s: %w", sheet, err)
	}
	ranges := make([]Range, 0, len(merged))
	for _, mc := range merged {
		r, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// ReadTable reads a whole sheet into memory. Formula cells yield their
// cached result, numbers stay numbers and every cell keeps its format code.
func (e *Editor) ReadTable(sheet string) (*Table, error) {
	rows, err := e.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %s in %s: %w", sheet, e.filepath, err)
	}

	table := NewTable(sheet)
	table.Rows = make([][]Cell, len(rows))
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, raw := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			cell, err := e.readCell(sheet, name, raw)
			if err != nil {
				return nil, err
			}
			cells[c] = cell
		}
		table.Rows[r] = cells
	}

	table.Merges, err = e.GetMergedRanges(sheet)
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (e *Editor) readCell(sheet, name, raw string) (Cell, error) {
	styleID, err := e.file.GetCellStyle(sheet, name)
	if err != nil {
		return Cell{}, fmt.Errorf("failed to get style of %s!%s: %w", sheet, name, err)
	}
	cell := Cell{Format: e.formatCode(styleID)}
	if raw == "" {
		return cell, nil
	}

	cellType, err := e.file.GetCellType(sheet, name)
	if err != nil {
		return Cell{}, fmt.Errorf("failed to get type of %s!%s: %w", sheet, name, err)
	}
	cell.Value = typedValue(cellType, raw)
	return cell, nil
}

func typedValue(cellType excelize.CellType, raw string) any {
	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
		return raw
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return raw
	default:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	}
}

func (e *Editor) formatCode(styleID int) string {
	if code, ok := e.formats[styleID]; ok {
		return code
	}
	code := GeneralFormat
	if style, err := e.file.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
			code = *style.CustomNumFmt
		} else {
			code = BuiltinFormatCode(style.NumFmt)
		}
	}
	e.formats[styleID] = code
	return code
}

// styleFor returns a style id carrying only the given number format.
func (e *Editor) styleFor(code string) (int, error) {
	if code == "" || code == GeneralFormat {
		return 0, nil
	}
	if id, ok := e.styles[code]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if builtinID, ok := BuiltinFormatID(code); ok {
		style.NumFmt = builtinID
	} else {
		custom := code
		style.CustomNumFmt = &custom
	}
	id, err := e.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style for format %q: %w", code, err)
	}
	e.styles[code] = id
	return id, nil
}

// WriteTable writes every cell of the table, with its number format, into the
// sheet and applies the table's merged ranges.
func (e *Editor) WriteTable(sheet string, table *Table) error {
	for r, row := range table.Rows {
		for c, cell := range row {
			if cell.Value == nil && (cell.Format == "" || cell.Format == GeneralFormat) {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if cell.Value != nil {
				if err := e.file.SetCellValue(sheet, name, cell.Value); err != nil {
					return fmt.Errorf("failed to set value of %s: %w", name, err)
				}
			}
			styleID, err := e.styleFor(cell.Format)
			if err != nil {
				return err
			}
			if styleID == 0 {
				continue
			}
			if err := e.file.SetCellStyle(sheet, name, name, styleID); err != nil {
				return fmt.Errorf("failed to apply style to %s: %w", name, err)
			}
		}
	}

	for _, merge := range table.Merges {
		if merge.Cells() < 2 {
			continue
		}
		if err := e.file.MergeCell(sheet, merge.TopLeft(), merge.BottomRight()); err != nil {
			return fmt.Errorf("failed to merge %s: %w", merge, err)
		}
	}
	return nil
}

// SaveAs saves the Excel file with a new name
func (e *Editor) SaveAs(path string) error {
	if err := e.file.SaveAs(path); err != nil {
		return err
	}
	e.filepath = path
	return nil
}

// Close closes the Excel file
func (e *Editor) Close() error {
	return e.file.Close()
}
