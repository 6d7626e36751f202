package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"rowmatch/internal/config"
	"rowmatch/internal/excel"

	"github.com/xuri/excelize/v2"
)

// firstExactSerial is 1900-03-01, the first serial that converts to a date
// and back without shifting.
const firstExactSerial = 61

var (
	yearFirstPattern = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
	dayFirstPattern  = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	monthDayPattern  = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)
)

// DateRules control how date columns are detected and how cells are turned
// into dates while copying.
type DateRules struct {
	HeaderKeywords   []string
	SerialThreshold  float64
	DateColumnFormat string
	// Now supplies the year for month/day strings such as 5月1日.
	Now func() time.Time
}

func DefaultDateRules() DateRules {
	return DateRulesFromConfig(config.Default().Dates)
}

func DateRulesFromConfig(cfg config.DatesConfig) DateRules {
	return DateRules{
		HeaderKeywords:   cfg.HeaderKeywords,
		SerialThreshold:  cfg.SerialThreshold,
		DateColumnFormat: cfg.DateColumnFormat,
		Now:              time.Now,
	}
}

// DateColumns returns the 1-based columns whose header text contains one of
// the keywords, compared case-insensitively.
func (r DateRules) DateColumns(table *excel.Table, headerRow int) map[int]bool {
	columns := make(map[int]bool)
	for i, header := range table.HeaderTexts(headerRow) {
		lower := strings.ToLower(header)
		for _, keyword := range r.HeaderKeywords {
			if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
				columns[i+1] = true
				break
			}
		}
	}
	return columns
}

// Convert applies the date inference rules to one copied cell.
//
// In a date column a serial number above the threshold becomes a date shown
// with DateColumnFormat. Elsewhere, a cell whose format is date-like has its
// serial number or date string turned into a date and keeps its format.
func (r DateRules) Convert(cell excel.Cell, dateColumn bool) excel.Cell {
	if dateColumn {
		if serial, ok := cell.Value.(float64); ok && serial > r.SerialThreshold {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return excel.Cell{Value: t, Format: r.DateColumnFormat}
			}
		}
	}

	if !excel.IsDateFormat(cell.Format) {
		return cell
	}

	switch v := cell.Value.(type) {
	case string:
		if t, ok := r.parseDateString(v); ok {
			cell.Value = t
		}
	case float64:
		// serials below 61 predate the 1900 leap-day bug and lose a day
		// going through time.Time; the kept format renders them as is
		if v < firstExactSerial {
			return cell
		}
		if t, err := excelize.ExcelDateToTime(v, false); err == nil {
			cell.Value = t
		}
	}
	return cell
}

// parseDateString finds the first date in s. Year-first is tried before
// day-first, then month/day with the current year.
func (r DateRules) parseDateString(s string) (time.Time, bool) {
	if m := yearFirstPattern.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		return makeDate(now().Year(), atoi(m[1]), atoi(m[2]))
	}
	return time.Time{}, false
}

// makeDate rejects out-of-range parts instead of letting time.Date roll them over.
func makeDate(year, month, day int) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
