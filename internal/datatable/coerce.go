package datatable

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DateTimeLayout is the layout used when a time value is compared as text.
const DateTimeLayout = "2006-01-02 15:04"

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

// localeCompare orders two strings with English collation rules.
func localeCompare(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// deref follows pointers; a nil pointer becomes nil.
func deref(v any) any {
	for v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return nil
}

// toString coerces a cell value to text. Absent values become "".
func toString(v any) string {
	v = deref(v)
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(DateTimeLayout)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// asNumber reports the numeric value of v and whether v is numeric at all.
func asNumber(v any) (float64, bool) {
	v = deref(v)
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case float64:
		return x, !math.IsNaN(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// isNumeric reports whether v coerces to a valid number.
func isNumeric(v any) bool {
	_, ok := asNumber(v)
	return ok
}

// compareValues orders two accessor outputs: chronologically for times,
// numerically for numbers and by locale otherwise. Mixed kinds rank absent
// values first, then times, then numbers, then text.
func compareValues(a, b any) int {
	a, b = deref(a), deref(b)
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindNumber:
		na, _ := asNumber(a)
		nb, _ := asNumber(b)
		return cmp.Compare(na, nb)
	}
	return localeCompare(toString(a), toString(b))
}

const (
	kindNone = iota
	kindTime
	kindNumber
	kindText
)

func kindOf(v any) int {
	switch v.(type) {
	case nil:
		return kindNone
	case time.Time:
		return kindTime
	}
	if isNumeric(v) {
		return kindNumber
	}
	return kindText
}
