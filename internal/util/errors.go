// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Common application-specific errors.
var (
	ErrNotFound          = errors.New("account not found")
	ErrInvalidPolicy     = errors.New("split percentages must each be within 0..100 and sum to 100")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// Refinements of ErrInvalidArgument. errors.Is(err, ErrInvalidArgument) holds for each of them.
var (
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidArgument)
	ErrAmountOverflow     = fmt.Errorf("%w: amount overflows balance", ErrInvalidArgument)
	ErrSameCategory       = fmt.Errorf("%w: source and destination category are the same", ErrInvalidArgument)
	ErrInvalidCategory    = fmt.Errorf("%w: unknown category", ErrInvalidArgument)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long", ErrInvalidArgument)
	ErrInvalidIdentity    = fmt.Errorf("%w: identity is empty", ErrInvalidArgument)
	ErrInvalidKind        = fmt.Errorf("%w: unknown transaction kind", ErrInvalidArgument)
)

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
