package meshgo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/meshgo/source"
)

var (
	// ErrNotFound is returned when the named document or one of its piece
	// files does not exist in the source store.
	ErrNotFound = errors.New("document not found")
)

// PieceError reports the failure of a single piece read within a
// multi-piece load.
//
// The original underlying error can be accessed via errors.Unwrap.
type PieceError struct {
	// Piece is the resolved store name of the failing piece file.
	Piece string
	Err   error
}

func (e *PieceError) Error() string {
	return fmt.Sprintf("piece %s: %v", e.Piece, e.Err)
}

func (e *PieceError) Unwrap() error { return e.Err }

// AggregateError collects the piece failures of a multi-piece load. All
// pieces are read to completion before the load fails, so Pieces holds
// every failure in piece declaration order, not just the first.
type AggregateError struct {
	Pieces []*PieceError
}

func (e *AggregateError) Error() string {
	names := make([]string, len(e.Pieces))
	for i, pe := range e.Pieces {
		names[i] = pe.Piece
	}

	return fmt.Sprintf("reading %d of the piece files failed: %s", len(e.Pieces), strings.Join(names, ", "))
}

// Unwrap exposes the individual piece errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Pieces))
	for i, pe := range e.Pieces {
		errs[i] = pe
	}

	return errs
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification. Piece misses stay inside the aggregate; only a
	// missing root document is folded into ErrNotFound.
	var agg *AggregateError
	if !errors.As(err, &agg) && errors.Is(err, source.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
