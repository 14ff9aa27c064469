// Package datatable implements a generic data-table engine: filtering through a
// predicate registry, a three-state sort cycle, local/manual/cursor pagination,
// identity-based selection and CSV export over an arbitrary row type.
//
// A Table owns all of its state. In local mode it derives the visible rows from
// the full data set itself; in manual mode it forwards each change to callbacks
// supplied by the host and only displays rows the host hands back.
package datatable

import "fmt"

// Identifiable is the constraint every row type satisfies. The identifier must be
// unique within the current data set and stable across re-fetches.
type Identifiable interface {
	RowID() string
}

// Operator identifies a filter predicate in the Registry.
type Operator string

const (
	Contains    Operator = "Contains"
	Equals      Operator = "Equals"
	NotEquals   Operator = "NotEquals"
	GreaterThan Operator = "GreaterThan"
	LessThan    Operator = "LessThan"
)

// Operators returns the built-in operators in menu order.
func Operators() []Operator {
	return []Operator{Contains, Equals, NotEquals, GreaterThan, LessThan}
}

// Label returns the human readable operator name.
func (o Operator) Label() string {
	switch o {
	case Contains:
		return "Contains"
	case Equals:
		return "Equals"
	case NotEquals:
		return "Not Equals"
	case GreaterThan:
		return "Greater Than"
	case LessThan:
		return "Less Than"
	default:
		return ""
	}
}

// SortDirection is the per-column sort state.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

// String returns the string representation of a SortDirection.
func (d SortDirection) String() string {
	switch d {
	case SortNone:
		return "none"
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", d)
	}
}

// next walks the cycle none -> asc -> desc -> none.
func (d SortDirection) next() SortDirection {
	switch d {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

// SortType is the tag handed to remote sort callbacks.
type SortType string

const (
	SortTypeAsc  SortType = "Asc"
	SortTypeDesc SortType = "Desc"
	SortTypeNone SortType = "None"
)

// Type maps a direction to the remote tag.
func (d SortDirection) Type() SortType {
	switch d {
	case SortAsc:
		return SortTypeAsc
	case SortDesc:
		return SortTypeDesc
	default:
		return SortTypeNone
	}
}

// Mode selects who computes a derived view: the table itself or the host.
type Mode int

const (
	Local Mode = iota
	Manual
)

// PaginationMode selects the paging strategy of a table instance.
type PaginationMode int

const (
	PaginateLocal PaginationMode = iota
	PaginateManual
	PaginateCursor
)

// String returns the string representation of a PaginationMode.
func (p PaginationMode) String() string {
	switch p {
	case PaginateLocal:
		return "local"
	case PaginateManual:
		return "manual"
	case PaginateCursor:
		return "cursor"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// Modes holds the three independent mode switches.
type Modes struct {
	Pagination PaginationMode
	Sorting    Mode
	Filtering  Mode
}

// BundledModes returns the single-switch configuration where pagination,
// sorting and filtering are all local or all manual.
func BundledModes(manual bool) Modes {
	if manual {
		return Modes{Pagination: PaginateManual, Sorting: Manual, Filtering: Manual}
	}
	return Modes{}
}

// PageState is the pagination slice of the table state. PageIndex is zero based.
type PageState struct {
	PageIndex int
	PageSize  int
}

// SortEntry is one active sort.
type SortEntry struct {
	Key       string
	Direction SortDirection
}

// ColumnFilter is the active filter of one column.
type ColumnFilter struct {
	Key      string
	Operator Operator
	Value    string
}

// Scope selects which rows an export covers.
type Scope string

const (
	ScopeSelected Scope = "selected"
	ScopeFull     Scope = "full"
)

// FilterRequest is passed to the manual filter callback. A zero Operator with an
// empty Key means every filter was reset.
type FilterRequest struct {
	Key      string
	Operator Operator
	Value    string
}

// SortRequest is passed to the manual sort callback.
type SortRequest struct {
	Key      string
	SortType SortType
}

// Batch is the result of a cursor "load more" call.
type Batch[R Identifiable] struct {
	Rows    []R
	HasMore bool
}
