// Package cell holds display formatters shared by the table renderer and the
// CSV export.
package cell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// NA is shown for absent values.
const NA = "N/A"

// DateTimeLayout matches the en-US locale date-time rendering.
const DateTimeLayout = "1/2/2006, 3:04:05 PM"

const (
	listLimit = 25
	ellipsis  = " ..."
)

// NumberStyle selects the decoration of a number cell.
type NumberStyle int

const (
	Plain NumberStyle = iota
	Price
	Percent
)

// Number formats v with thousands separators and at most two decimals.
func Number(v any, style NumberStyle) string {
	f, ok := float(v)
	if !ok {
		return NA
	}
	s := humanize.Commaf(math.Round(f*100) / 100)
	switch style {
	case Price:
		return "$ " + s
	case Percent:
		return s + "%"
	default:
		return s
	}
}

// NumberFormat returns a column formatter for style.
func NumberFormat(style NumberStyle) func(any) string {
	return func(v any) string { return Number(v, style) }
}

func float(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case *int:
		if x == nil {
			return 0, false
		}
		return float64(*x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// DateTime formats a time value; the zero time and nil read as N/A.
func DateTime(v any) string {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return NA
		}
		t = *x
	default:
		return NA
	}
	if t.IsZero() {
		return NA
	}
	return t.Local().Format(DateTimeLayout)
}

// List joins names with ", ", truncating past 25 characters. With single set
// only the number of entries is shown.
func List(names []string, single bool) string {
	if names == nil {
		return NA
	}
	if single {
		return strconv.Itoa(len(names))
	}
	s := strings.Join(names, ", ")
	if utf8.RuneCountInString(s) > listLimit {
		return string([]rune(s)[:listLimit]) + ellipsis
	}
	return s
}

// ListFormat returns a column formatter over []string values.
func ListFormat(single bool) func(any) string {
	return func(v any) string {
		names, ok := v.([]string)
		if !ok {
			return NA
		}
		return List(names, single)
	}
}

// Text returns s, or N/A when it is empty.
func Text(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
	case string:
		s = x
	case *string:
		if x != nil {
			s = *x
		}
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	if s == "" {
		return NA
	}
	return s
}
