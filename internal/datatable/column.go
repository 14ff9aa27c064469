package datatable

import "fmt"

// ColumnKind distinguishes data columns from the synthetic ones.
type ColumnKind int

const (
	KindData ColumnKind = iota
	KindSelect
	KindActions
)

const (
	// SelectKey is the key of the selection checkbox column.
	SelectKey = "select"
	// ActionsKey is the key of the row actions column.
	ActionsKey = "actions"
)

// Column describes one table column.
//
// Accessor must be pure: it is called for every row on every filter, sort,
// render and export pass. Format turns the accessor output into the displayed
// text, and the CSV export goes through the same Format so exported values match
// what is on screen.
type Column[R Identifiable] struct {
	Key      string
	Label    string
	Accessor func(R) any
	Format   func(any) string

	Sortable   bool
	Filterable bool
	Hideable   bool
	Exportable bool

	// Filter overrides the registry for this column when set.
	Filter ColumnPredicate

	Kind ColumnKind

	// Action renders the actions cell of a KindActions column.
	Action func(R) string
}

// NewColumn returns a data column with every capability enabled.
func NewColumn[R Identifiable](key, label string, accessor func(R) any) Column[R] {
	return Column[R]{
		Key:        key,
		Label:      label,
		Accessor:   accessor,
		Sortable:   true,
		Filterable: true,
		Hideable:   true,
		Exportable: true,
	}
}

// SelectColumn returns the checkbox column.
func SelectColumn[R Identifiable]() Column[R] {
	return Column[R]{Key: SelectKey, Kind: KindSelect}
}

// ActionsColumn returns a row actions column rendered by fn.
func ActionsColumn[R Identifiable](label string, fn func(R) string) Column[R] {
	return Column[R]{Key: ActionsKey, Label: label, Kind: KindActions, Action: fn}
}

// WithFormat returns a copy of c using format for display and export.
func (c Column[R]) WithFormat(format func(any) string) Column[R] {
	c.Format = format
	return c
}

// Value returns the raw accessor output for row.
func (c Column[R]) Value(row R) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Display returns the text shown in the grid and written to exports.
func (c Column[R]) Display(row R) string {
	switch c.Kind {
	case KindActions:
		if c.Action == nil {
			return ""
		}
		return c.Action(row)
	case KindSelect:
		return ""
	}
	v := c.Value(row)
	if c.Format != nil {
		return c.Format(v)
	}
	return toString(v)
}

func (c Column[R]) exportable() bool {
	return c.Kind == KindData && c.Exportable
}

func (c Column[R]) validate() error {
	if c.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidColumn)
	}
	switch c.Kind {
	case KindData:
		if c.Accessor == nil {
			return fmt.Errorf("%w: column %q has no accessor", ErrInvalidColumn, c.Key)
		}
	case KindSelect, KindActions:
		if c.Sortable || c.Filterable || c.Exportable {
			return fmt.Errorf("%w: column %q cannot be sorted, filtered or exported", ErrInvalidColumn, c.Key)
		}
	default:
		return fmt.Errorf("%w: column %q has unknown kind %d", ErrInvalidColumn, c.Key, c.Kind)
	}
	return nil
}
