package excel

import "strings"

const GeneralFormat = "General"

// builtinFormats holds the format codes of the built-in number format ids
// that a workbook may reference without declaring them.
var builtinFormats = map[int]string{
	0:  GeneralFormat,
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00 ;(#,##0.00)",
	40: "#,##0.00 ;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
	// CJK locale date formats
	27: `yyyy"年"m"月"`,
	28: `m"月"d"日"`,
	29: `m"月"d"日"`,
	30: "m-d-yy",
	31: `yyyy"年"m"月"d"日"`,
	32: `h"时"mm"分"`,
	33: `h"时"mm"分"ss"秒"`,
	34: `上午/下午h"时"mm"分"`,
	35: `上午/下午h"时"mm"分"ss"秒"`,
	36: `yyyy"年"m"月"`,
	50: `yyyy"年"m"月"`,
	51: `m"月"d"日"`,
	52: `yyyy"年"m"月"`,
	53: `m"月"d"日"`,
	54: `m"月"d"日"`,
	55: `上午/下午h"时"mm"分"`,
	56: `上午/下午h"时"mm"分"ss"秒"`,
	57: `yyyy"年"m"月"`,
	58: `m"月"d"日"`,
}

// BuiltinFormatCode returns the format code of a built-in number format id.
// Unknown ids fall back to General.
func BuiltinFormatCode(id int) string {
	if code, ok := builtinFormats[id]; ok {
		return code
	}
	return GeneralFormat
}

// BuiltinFormatID returns the built-in id of a format code, if it has one.
// Locale dependent ids (27-36, 50-58) are never returned: their rendering
// depends on the reader's Excel language, so those codes are written as
// custom formats instead.
func BuiltinFormatID(code string) (int, bool) {
	for id, builtin := range builtinFormats {
		if builtin != code || isLocaleFormatID(id) {
			continue
		}
		return id, true
	}
	return 0, false
}

func isLocaleFormatID(id int) bool {
	return (id >= 27 && id <= 36) || (id >= 50 && id <= 58)
}

// IsDateFormat reports whether a format code looks like a date or time format,
// i.e. whether it mentions a year, month or day token. Quoted literals,
// escaped characters and bracketed sections such as [Red] are ignored.
func IsDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == '\\':
			escaped = true
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ymd")
}
