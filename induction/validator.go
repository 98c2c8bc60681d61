package induction

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrIdentifierTaken is returned when the uniqueness oracle reports the
// candidate identifier as already assigned.
var ErrIdentifierTaken = errors.New("identifier is already assigned to another asset")

// ScanValidator validates the raw first scan of a session.
type ScanValidator interface {
	Validate(ctx context.Context, raw string) error
}

// ScanValidatorFunc adapts a function to the ScanValidator interface.
type ScanValidatorFunc func(ctx context.Context, raw string) error

func (f ScanValidatorFunc) Validate(ctx context.Context, raw string) error {
	return f(ctx, raw)
}

// UniquenessOracle answers whether an identifier is already in use,
// optionally exempting one existing asset (re-induction). Supplied by
// the persistence layer.
type UniquenessOracle interface {
	IsIdentifierTaken(ctx context.Context, candidate string, excludingID string) (bool, error)
}

// PrefixUniquenessValidator is the standard first-scan validator: the
// normalized identifier must start with one of the owning company's
// facility prefixes and must not already be assigned.
type PrefixUniquenessValidator struct {
	// Prefixes the identifier may start with, e.g. "NT". Empty means
	// any prefix is acceptable.
	Prefixes []string

	Oracle UniquenessOracle

	// ExcludingID exempts one asset from the uniqueness check.
	ExcludingID string
}

func (v *PrefixUniquenessValidator) Validate(ctx context.Context, raw string) error {
	identifier := NormalizeScan(raw)
	if identifier == "" {
		return fmt.Errorf("scan contains no usable characters")
	}

	if len(v.Prefixes) > 0 && !hasAnyPrefix(identifier, v.Prefixes) {
		return fmt.Errorf("identifier %q must start with one of the facility prefixes %s",
			identifier, strings.Join(v.Prefixes, ", "))
	}

	if v.Oracle != nil {
		taken, err := v.Oracle.IsIdentifierTaken(ctx, identifier, v.ExcludingID)
		if err != nil {
			return fmt.Errorf("uniqueness check failed: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrIdentifierTaken, identifier)
		}
	}

	return nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(s), strings.ToUpper(prefix)) {
			return true
		}
	}
	return false
}
