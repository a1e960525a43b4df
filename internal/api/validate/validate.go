package validate

import (
	"fmt"
	"regexp"
)

const (
	// MaxCandidates bounds the candidate set of one scoring request.
	MaxCandidates = 500
	// MaxLimit bounds how many results a caller may request.
	MaxLimit = 500
)

// walletRx keeps wallet identifiers to printable, address-like strings.
var walletRx = regexp.MustCompile(`^[A-Za-z0-9:_\-\.]{1,100}$`)

// Wallet validates a wallet identifier.
func Wallet(v string) error {
	if v == "" {
		return fmt.Errorf("wallet is required")
	}
	if !walletRx.MatchString(v) {
		return fmt.Errorf("wallet contains invalid characters or exceeds 100 characters")
	}
	return nil
}

// CandidateCount validates the size of a scoring candidate set. An empty
// batch is valid and scores to zero predictions.
func CandidateCount(n int) error {
	if n > MaxCandidates {
		return fmt.Errorf("candidates exceed maximum of %d", MaxCandidates)
	}
	return nil
}

// Limit validates a result limit. Zero is allowed; callers apply a default.
func Limit(n int) error {
	if n < 0 {
		return fmt.Errorf("limit must be at least 1")
	}
	if n > MaxLimit {
		return fmt.Errorf("limit exceeds maximum of %d", MaxLimit)
	}
	return nil
}

// NonEmpty validates that a required field is present.
func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
