package stock_health

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// Fixed layouts tried before lenient parsing. Day-first layouts come before
// any month-first interpretation because the source data is pt-BR.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"02/01/06",
	"20060102",
}

const (
	// largest Excel serial (9999-12-31)
	maxExcelSerial = 2958465
	// numbers above this are taken as epoch milliseconds
	minEpochMillis = 1e11
)

// parseDate coerces a raw cell into a calendar date (UTC midnight).
func parseDate(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return calendarDate(x), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return calendarDate(*x), true
	case string:
		return parseDateString(x)
	case bool:
		return time.Time{}, false
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return time.Time{}, false
		}
		return dateFromNumber(f)
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if t, ok := dateFromNumber(f); ok {
			return t, true
		}
	}

	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func dateFromNumber(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return time.Time{}, false
	}
	if f >= minEpochMillis {
		return calendarDate(time.UnixMilli(int64(f)).UTC()), true
	}
	if f > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// thousandsGroup matches a lone pt-BR grouping dot such as "2.500".
var thousandsGroup = regexp.MustCompile(`^-?[1-9][0-9]{0,2}\.[0-9]{3}$`)

var currencyStripper = strings.NewReplacer("R$", "", "$", "", " ", "", " ", "")

// parseNumber coerces a raw cell into a finite float. Strings accept both
// pt-BR ("1.234,56") and en ("1,234.56") separators. A single dot followed by
// exactly three digits is a pt-BR thousands separator: "2.500" is 2500.
func parseNumber(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseNumberString(x)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
}

func parseNumberString(s string) (float64, bool) {
	s = currencyStripper.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1, thousandsGroup.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// cellString renders an identifier cell; integral floats lose their ".0".
func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(cast.ToString(v))
}
