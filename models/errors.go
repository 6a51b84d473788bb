package models

import (
	"errors"
	"fmt"
)

// Recoverable domain failures. All of them leave state untouched and are
// reported back to the requester; none should crash the process.
var (
	ErrInsufficientFunds     = errors.New("insufficient points balance")
	ErrSelfSupportNotAllowed = errors.New("cannot claim support on your own item")
	ErrDuplicateClaim        = errors.New("support already claimed for this item")
	ErrNotAuthorized         = errors.New("not authorized to resolve this request")
	ErrAlreadyResolved       = errors.New("already resolved")
	ErrHandleTaken           = errors.New("handle already taken")
)

// AlreadyResolvedError reports the terminal state an interaction or admin
// action was found in when a second resolution was attempted. It matches
// ErrAlreadyResolved under errors.Is; callers surface it as an informational
// status, not a hard failure — it is the expected outcome of the manual
// accept racing the expiry sweep.
type AlreadyResolvedError struct {
	Status ApprovalStatus
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("already resolved (status: %s)", e.Status)
}

func (e *AlreadyResolvedError) Is(target error) bool {
	return target == ErrAlreadyResolved
}
