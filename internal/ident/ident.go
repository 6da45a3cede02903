// Package ident issues short human-readable codes for inventory items
// and storage bins.
package ident

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrExhaustedKeyspace is returned when no free item id is found within
// the retry budget. The id length must be widened before more items can
// be issued.
var ErrExhaustedKeyspace = errors.New("item id keyspace exhausted")

const (
	// itemIDPrefix is the constant prefix on every item code.
	itemIDPrefix = "DN-"

	// itemIDAlphabet has 36 symbols; with 4 positions the keyspace holds
	// 36^4 = 1679616 codes.
	itemIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	itemIDLength   = 4

	// maxIDAttempts bounds the draw-and-check loop. Collisions become
	// frequent long before the keyspace is full, so give up early and
	// surface it instead of spinning.
	maxIDAttempts = 100
)

// NewItemID draws random item codes until one is not already taken.
// The exists check and the caller's insert must share a transaction so
// that concurrent issuers cannot race on the same code.
func NewItemID(exists func(id string) bool) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := randomItemID()
		if err != nil {
			return "", err
		}
		if !exists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free id after %d attempts", ErrExhaustedKeyspace, maxIDAttempts)
}

func randomItemID() (string, error) {
	var sb strings.Builder
	sb.WriteString(itemIDPrefix)
	for i := 0; i < itemIDLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(itemIDAlphabet))))
		if err != nil {
			return "", fmt.Errorf("drawing item id symbol: %w", err)
		}
		sb.WriteByte(itemIDAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NewBinID composes a human-decodable bin code from a random 3-digit
// disambiguator and the bin's structural attributes. Uniqueness is
// best-effort: callers must check the result against existing bin ids
// before persisting.
func NewBinID(zone, rack, shelf string, capacity int) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("drawing bin disambiguator: %w", err)
	}
	return fmt.Sprintf("%03d-%s-%s-%s-C%d",
		n.Int64(),
		strings.ToUpper(zone),
		strings.ToUpper(rack),
		strings.ToUpper(shelf),
		capacity,
	), nil
}
