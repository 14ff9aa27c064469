package cell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	price := 1234.567
	var missing *float64

	tests := []struct {
		name  string
		v     any
		style NumberStyle
		want  string
	}{
		{"grouping", 1234567, Plain, "1,234,567"},
		{"two decimals", 1234.567, Plain, "1,234.57"},
		{"trailing zeros dropped", 12.5, Plain, "12.5"},
		{"price", &price, Price, "$ 1,234.57"},
		{"percent", 42.0, Percent, "42%"},
		{"nil", nil, Price, NA},
		{"nil pointer", missing, Plain, NA},
		{"numeric string", "1000", Plain, "1,000"},
		{"text", "abc", Plain, NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.v, tt.style))
		})
	}
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2025, 5, 2, 20, 4, 5, 0, time.Local)
	assert.Equal(t, "5/2/2025, 8:04:05 PM", DateTime(ts))
	assert.Equal(t, "5/2/2025, 8:04:05 PM", DateTime(&ts))
	assert.Equal(t, NA, DateTime(time.Time{}))
	assert.Equal(t, NA, DateTime((*time.Time)(nil)))
	assert.Equal(t, NA, DateTime("yesterday"))
}

func TestList(t *testing.T) {
	assert.Equal(t, "Miles, Coltrane", List([]string{"Miles", "Coltrane"}, false))
	assert.Equal(t, "Miles Davis, John Coltran ...", List([]string{"Miles Davis", "John Coltrane"}, false))
	assert.Equal(t, "2", List([]string{"Miles Davis", "John Coltrane"}, true))
	assert.Equal(t, NA, List(nil, false))
	assert.Equal(t, NA, ListFormat(false)(42))
}

func TestText(t *testing.T) {
	s := "Berlin"
	assert.Equal(t, "Berlin", Text(s))
	assert.Equal(t, "Berlin", Text(&s))
	assert.Equal(t, NA, Text(""))
	assert.Equal(t, NA, Text(nil))
	assert.Equal(t, "7", Text(7))
}
