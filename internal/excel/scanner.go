package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SheetSummary describes one worksheet of a scanned workbook
type SheetSummary struct {
	Name       string
	Active     bool
	Rows       int
	Cols       int
	Headers    []string
	MergeCount int
}

// WorkbookSummary describes a scanned workbook
type WorkbookSummary struct {
	Path   string
	Sheets []SheetSummary
}

// ListWorkbooks returns all workbooks under dir, sorted by path.
// Office lock files (~$name.xlsx) are skipped.
func ListWorkbooks(dir string) ([]string, error) {
	var workbooks []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), "~$") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			workbooks = append(workbooks, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workbooks in %s: %w", dir, err)
	}

	sort.Strings(workbooks)
	return workbooks, nil
}

// SummarizeWorkbook reads every sheet of a workbook and reports its size,
// headers (taken from headerRow) and merged range count.
func SummarizeWorkbook(path string, headerRow int) (*WorkbookSummary, error) {
	editor, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	active, _ := editor.ActiveSheet()
	summary := &WorkbookSummary{Path: path}

	for _, sheet := range editor.GetSheetNames() {
		table, err := editor.ReadTable(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		summary.Sheets = append(summary.Sheets, SheetSummary{
			Name:       sheet,
			Active:     sheet == active,
			Rows:       table.MaxRow(),
			Cols:       table.MaxCol(),
			Headers:    table.HeaderTexts(headerRow),
			MergeCount: len(table.Merges),
		})
	}

	return summary, nil
}

// ScanDirectory summarizes every workbook under dir. Workbooks that cannot
// be read are reported through the returned map instead of aborting the scan.
func ScanDirectory(dir string, headerRow int) ([]*WorkbookSummary, map[string]error, error) {
	paths, err := ListWorkbooks(dir)
	if err != nil {
		return nil, nil, err
	}

	failures := make(map[string]error)
	var summaries []*WorkbookSummary
	for _, path := range paths {
		summary, err := SummarizeWorkbook(path, headerRow)
		if err != nil {
			failures[path] = err
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, failures, nil
}
