package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"rowmatch/internal/excel"
)

// KeySet is the set of acceptable key values taken from the lookup table.
type KeySet map[string]struct{}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

func (s KeySet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Len() int {
	return len(s)
}

// NormalizeKey renders a cell value as the string used for membership tests.
// Integral numbers drop their decimal part so that 3, 3.0 and "3" agree.
func NormalizeKey(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// BuildLookupSet collects every non-empty value of the 1-based column over
// all rows of the table, header row included.
func BuildLookupSet(table *excel.Table, col int) KeySet {
	keys := make(KeySet)
	for row := 1; row <= table.MaxRow(); row++ {
		cell := table.Cell(row, col)
		if cell.IsEmpty() {
			continue
		}
		keys.Add(NormalizeKey(cell.Value))
	}
	return keys
}
