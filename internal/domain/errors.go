package domain

import "errors"

var (
	ErrValidation              = errors.New("invalid request")
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("only the stake owner can transfer it")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInsufficientQuantity    = errors.New("insufficient quantity")
	ErrPositionUnavailable     = errors.New("position is not available for transfers")
	ErrDuplicateActivePosition = errors.New("an active position for this product already exists")
	ErrHasDependents           = errors.New("record is still referenced by other records")
	ErrStoreUnavailable        = errors.New("store unavailable")
)

// IsRejection reports whether err is a business rule or input rejection
// rather than a store failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrNotFound,
		ErrForbidden,
		ErrInsufficientFunds,
		ErrInsufficientQuantity,
		ErrPositionUnavailable,
		ErrDuplicateActivePosition,
		ErrHasDependents,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
