package match

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rowmatch/internal/excel"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyColumn    = errors.New("column reference is empty")
	ErrColumnNotFound = errors.New("column not found")
)

// ColumnRef points at a column either by position (Index > 0) or by the
// text of its header cell.
type ColumnRef struct {
	Raw    string
	Index  int
	Header string
}

// ParseColumn accepts a column letter ("C", "aa"), a 1-based column number
// ("3") or a header name ("Patient ID").
func ParseColumn(ref string) (ColumnRef, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return ColumnRef{}, ErrEmptyColumn
	}

	if isDigits(trimmed) {
		index, err := strconv.Atoi(trimmed)
		if err != nil || index < 1 {
			return ColumnRef{}, fmt.Errorf("invalid column number %q", ref)
		}
		return ColumnRef{Raw: ref, Index: index}, nil
	}

	if isLetters(trimmed) && len(trimmed) <= 3 {
		if index, err := excelize.ColumnNameToNumber(strings.ToUpper(trimmed)); err == nil {
			return ColumnRef{Raw: ref, Index: index}, nil
		}
	}

	return ColumnRef{Raw: ref, Header: trimmed}, nil
}

// Resolve returns the 1-based column index, looking header names up in
// headerRow of the table. Headers compare case-insensitively, with
// full-width characters folded to their ASCII forms.
func (c ColumnRef) Resolve(table *excel.Table, headerRow int) (int, error) {
	if c.Index > 0 {
		return c.Index, nil
	}
	want := norm.NFKC.String(c.Header)
	for i, header := range table.HeaderTexts(headerRow) {
		if strings.EqualFold(norm.NFKC.String(header), want) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: no header %q in row %d of sheet %s", ErrColumnNotFound, c.Header, headerRow, table.Name)
}

func (c ColumnRef) String() string {
	if c.Index > 0 {
		name, err := excelize.ColumnNumberToName(c.Index)
		if err == nil {
			return name
		}
		return strconv.Itoa(c.Index)
	}
	return c.Header
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}
