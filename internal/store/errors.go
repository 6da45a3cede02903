// Package store is the persistence layer. Functions are plain
// (ctx, db, args...) calls; anything that must hold an invariant across
// rows runs inside a single transaction.
package store

import "errors"

// Sentinel errors surfaced to callers. Validation and capacity errors are
// never retried automatically: capacity exhaustion is resolved by an
// operator provisioning more bins.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrBinFull         = errors.New("bin is at capacity")
	ErrNoBinsExist     = errors.New("no bins exist")
	ErrBinsAtCapacity  = errors.New("all bins are at capacity")
	ErrNotInBin        = errors.New("item is not in this bin")
)
