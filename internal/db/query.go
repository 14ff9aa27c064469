package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/event"
)

// Query errors.
var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownOperator = errors.New("unknown filter operator")
	ErrCursorSort      = errors.New("a cursor cannot be combined with a sort key")
)

// field maps a table column key to the SQL expression it filters and sorts on.
type field struct {
	expr    string
	numeric bool
	search  bool
}

// localMinute renders a stored UTC time column as the local wall clock text the
// table compares times with.
func localMinute(col string) string {
	return "strftime('%Y-%m-%d %H:%M', " + col + ", 'localtime')"
}

var fields = map[string]field{
	event.KeyTitle:     {expr: "title", search: true},
	event.KeyHost:      {expr: "host", search: true},
	event.KeyArtists:   {expr: "replace(artists, ';', ', ')", search: true},
	event.KeyVenue:     {expr: "venue", search: true},
	event.KeyCity:      {expr: "city", search: true},
	event.KeyStatus:    {expr: "status", search: true},
	event.KeyStartsAt:  {expr: localMinute("starts_at")},
	event.KeyCreatedAt: {expr: localMinute("created_at")},
	event.KeyUpdatedAt: {expr: localMinute("updated_at")},
	event.KeyPrice:     {expr: "price", numeric: true},
	event.KeyCapacity:  {expr: "capacity", numeric: true},
	event.KeySold:      {expr: "(CASE WHEN capacity > 0 THEN tickets_sold * 100.0 / capacity END)", numeric: true},
}

// sortExprs are the ORDER BY expressions; times sort on their stored UTC text.
var sortExprs = map[string]string{
	event.KeyStartsAt:  "starts_at",
	event.KeyCreatedAt: "created_at",
	event.KeyUpdatedAt: "updated_at",
}

// whereClause builds the WHERE condition for filters and a search term. The
// returned clause is empty when nothing restricts the result.
func whereClause(filters []datatable.ColumnFilter, search string) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, f := range filters {
		fd, ok := fields[f.Key]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownColumn, f.Key)
		}
		cond, arg, err := predicate(fd, f.Operator, f.Value)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if search = strings.TrimSpace(search); search != "" {
		var ors []string
		for _, fd := range fields {
			if fd.search {
				ors = append(ors, contains(fd.expr))
				args = append(args, search)
			}
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// predicate translates one operator to SQL with the table's semantics: numeric
// comparison when both sides are numbers, case-insensitive text otherwise.
func predicate(fd field, op datatable.Operator, value string) (string, any, error) {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	numeric := fd.numeric && err == nil

	text := "lower(COALESCE(CAST(" + fd.expr + " AS TEXT), ''))"
	switch op {
	case datatable.Contains:
		return contains(fd.expr), value, nil
	case datatable.Equals:
		if numeric {
			return "COALESCE(" + fd.expr + " = ?, 0)", num, nil
		}
		return text + " = lower(?)", value, nil
	case datatable.NotEquals:
		if numeric {
			return "NOT COALESCE(" + fd.expr + " = ?, 0)", num, nil
		}
		return text + " <> lower(?)", value, nil
	case datatable.GreaterThan:
		if numeric {
			return "COALESCE(" + fd.expr + " > ?, 0)", num, nil
		}
		return text + " > lower(?)", value, nil
	case datatable.LessThan:
		if numeric {
			return "COALESCE(" + fd.expr + " < ?, 0)", num, nil
		}
		return text + " < lower(?)", value, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
}

func contains(expr string) string {
	return "instr(lower(COALESCE(CAST(" + expr + " AS TEXT), '')), lower(?)) > 0"
}

// orderClause sorts by key with the insertion order as tie-break.
func orderClause(key string, desc bool) (string, error) {
	if key == "" {
		return " ORDER BY rowid", nil
	}
	expr, ok := sortExprs[key]
	if !ok {
		fd, known := fields[key]
		if !known || key == event.KeyArtists {
			return "", fmt.Errorf("%w: %q", ErrUnknownColumn, key)
		}
		expr = fd.expr
		if !fd.numeric {
			expr += " COLLATE NOCASE"
		}
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, rowid", expr, dir), nil
}
