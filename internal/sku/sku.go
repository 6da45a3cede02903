// Package sku parses and compares structured garment product codes.
//
// A SKU has five hyphen-delimited fields: style (2 letters), waist
// (2 digits), shape (1 letter), length/inseam (2 digits) and a 3-letter
// wash/finish code, e.g. "ST-32-X-30-RAW".
package sku

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned when a token does not parse as a SKU.
var ErrInvalidFormat = fmt.Errorf("invalid SKU format")

// Finish codes that mark a garment as unfinished and therefore eligible
// for a production or alteration run.
const (
	FinishRaw       = "RAW"
	FinishBrokenRaw = "BRW"
)

var (
	styleRe  = regexp.MustCompile(`^[A-Z]{2}$`)
	waistRe  = regexp.MustCompile(`^[0-9]{2}$`)
	shapeRe  = regexp.MustCompile(`^[A-Z]$`)
	lengthRe = regexp.MustCompile(`^[0-9]{2}$`)
	finishRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

// SKU is an immutable five-field product code.
type SKU struct {
	Style  string `json:"style"`
	Waist  string `json:"waist"`
	Shape  string `json:"shape"`
	Length string `json:"length"`
	Finish string `json:"finish"`
}

// Parse validates a token and splits it into a SKU.
func Parse(token string) (SKU, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(token)), "-")
	if len(parts) != 5 {
		return SKU{}, fmt.Errorf("%w: expected 5 fields separated by '-', got %d", ErrInvalidFormat, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return SKU{}, fmt.Errorf("%w: empty field in %q", ErrInvalidFormat, token)
		}
	}

	s := SKU{
		Style:  parts[0],
		Waist:  parts[1],
		Shape:  parts[2],
		Length: parts[3],
		Finish: parts[4],
	}

	switch {
	case !styleRe.MatchString(s.Style):
		return SKU{}, fmt.Errorf("%w: style %q must be 2 letters", ErrInvalidFormat, s.Style)
	case !waistRe.MatchString(s.Waist):
		return SKU{}, fmt.Errorf("%w: waist %q must be 2 digits", ErrInvalidFormat, s.Waist)
	case !shapeRe.MatchString(s.Shape):
		return SKU{}, fmt.Errorf("%w: shape %q must be 1 letter", ErrInvalidFormat, s.Shape)
	case !lengthRe.MatchString(s.Length):
		return SKU{}, fmt.Errorf("%w: length %q must be 2 digits", ErrInvalidFormat, s.Length)
	case !finishRe.MatchString(s.Finish):
		return SKU{}, fmt.Errorf("%w: finish %q must be 3 letters", ErrInvalidFormat, s.Finish)
	}

	return s, nil
}

// String returns the canonical textual form.
func (s SKU) String() string {
	return strings.Join([]string{s.Style, s.Waist, s.Shape, s.Length, s.Finish}, "-")
}

// ExactMatch reports whether all five fields are equal.
func ExactMatch(a, b SKU) bool {
	return a == b
}

// Substitutable reports whether b's demand can be satisfied by a garment
// with SKU a through alteration: style, waist and shape must match, while
// length may differ because excess length can be shortened. Finish is
// evaluated separately by the caller against its target finish.
func Substitutable(a, b SKU) bool {
	return a.Style == b.Style && a.Waist == b.Waist && a.Shape == b.Shape
}

// ProductionEligible reports whether the garment is unfinished and may be
// queued for a production or alteration run.
func ProductionEligible(s SKU) bool {
	return s.Finish == FinishRaw || s.Finish == FinishBrokenRaw
}

// WithFinish returns a copy with the finish field replaced.
func (s SKU) WithFinish(finish string) SKU {
	s.Finish = finish
	return s
}

// WithLength returns a copy with the length field replaced. Used when an
// altered garment is shortened to the demanded inseam.
func (s SKU) WithLength(length string) SKU {
	s.Length = length
	return s
}
