// Package domain contains the core domain types for the withdrawal context.
package domain

import "errors"

// ErrUnknownVariant is returned when a request names a variant outside the
// closed set below.
var ErrUnknownVariant = errors.New("unknown withdrawal variant")

// Variant is a named withdrawal policy. The set is closed: variants are
// resolved through ParseVariant, never by raw string lookup, so an unknown
// identifier is a typed error rather than a silent miss.
type Variant string

const (
	// VariantDirect is a single transfer with no extra checks.
	VariantDirect Variant = "direct"

	// VariantVerified cross-validates the balance against an independent
	// endpoint before transferring.
	VariantVerified Variant = "verified"

	// VariantAudited re-reads the balance after the transfer and rejects
	// the reported success when the balance did not decrease.
	VariantAudited Variant = "audited"

	// VariantGated consults an approval decision before transferring.
	VariantGated Variant = "gated"

	// VariantInternal redirects funds to a fixed internal address with a
	// custom gas limit, ignoring the caller-supplied destination.
	VariantInternal Variant = "internal"

	// VariantSplit divides the amount evenly across a fixed destination
	// set, one sequential transfer per destination.
	VariantSplit Variant = "split"

	// VariantExpress overrides the priority fee upward for fast inclusion.
	VariantExpress Variant = "express"

	// VariantFrugal submits with a zero priority fee, accepting slow or
	// absent inclusion in exchange for minimal cost.
	VariantFrugal Variant = "frugal"
)

// All returns the registered variants in a stable order.
func All() []Variant {
	return []Variant{
		VariantDirect,
		VariantVerified,
		VariantAudited,
		VariantGated,
		VariantInternal,
		VariantSplit,
		VariantExpress,
		VariantFrugal,
	}
}

// ParseVariant resolves an identifier to a Variant.
func ParseVariant(id string) (Variant, error) {
	v := Variant(id)
	for _, known := range All() {
		if v == known {
			return v, nil
		}
	}
	return "", ErrUnknownVariant
}

func (v Variant) String() string {
	return string(v)
}
