package datatable

import (
	"errors"
	"fmt"
)

// Configuration errors. They are logged and the operation becomes a no-op.
var (
	ErrConfiguration   = errors.New("table configuration error")
	ErrUnknownColumn   = fmt.Errorf("%w: unknown column", ErrConfiguration)
	ErrNotFilterable   = fmt.Errorf("%w: column is not filterable", ErrConfiguration)
	ErrNotSortable     = fmt.Errorf("%w: column is not sortable", ErrConfiguration)
	ErrNotHideable     = fmt.Errorf("%w: column cannot be hidden", ErrConfiguration)
	ErrUnknownOperator = fmt.Errorf("%w: unknown filter operator", ErrConfiguration)
	ErrInvalidPageSize = fmt.Errorf("%w: page size must be positive", ErrConfiguration)
	ErrUnknownRow      = fmt.Errorf("%w: unknown row", ErrConfiguration)
	ErrWrongMode       = fmt.Errorf("%w: operation not available in this pagination mode", ErrConfiguration)
)

// Construction errors returned by New.
var (
	ErrDuplicateColumn = errors.New("duplicate column key")
	ErrInvalidColumn   = errors.New("invalid column")
	ErrMissingCallback = errors.New("manual mode requires a callback")
)

// Runtime errors.
var (
	// ErrPredicateEvaluation reports a predicate that failed internally. The
	// row it was evaluating is kept (fail-open).
	ErrPredicateEvaluation = errors.New("filter predicate failed")

	// ErrNoRowsToExport is returned when an export has nothing to write.
	ErrNoRowsToExport = errors.New("there are no row(s) selected to download, please try again")
)

// RemoteCallbackError wraps a failure returned by a host callback.
type RemoteCallbackError struct {
	Op  string
	Err error
}

func (e *RemoteCallbackError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallbackError) Unwrap() error {
	return e.Err
}

func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteCallbackError{Op: op, Err: err}
}
