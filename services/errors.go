package services

import "errors"

// Sentinel errors. Callers match them with errors.Is; the wrapped message
// carries the detail.
var (
	// ErrNotFound: the scope has no participants or wallets, or nothing is
	// materialized and the on-demand recompute could not produce a snapshot.
	ErrNotFound = errors.New("stats: not found")

	// ErrComputation: malformed ledger input, e.g. a non-positive amount.
	ErrComputation = errors.New("stats: computation failed")

	// ErrPersistence: a materialization write or ledger read failed.
	ErrPersistence = errors.New("stats: persistence failed")

	// ErrInvalidInput: a request could not be parsed (bad id, bad date).
	ErrInvalidInput = errors.New("stats: invalid input")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsComputation(err error) bool {
	return errors.Is(err, ErrComputation)
}
