package api

import (
	"errors"
	"fmt"
)

// Errors for the two HTTP statuses the client distinguishes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// Per-operation errors. Every failure of the corresponding method wraps one
// of these, whatever the underlying cause was.
var (
	ErrBalanceFetch      = errors.New("failed to fetch balance")
	ErrTransfer          = errors.New("transfer failed")
	ErrInstantDebit      = errors.New("instant debit request failed")
	ErrLookup            = errors.New("failed to look up user email")
	ErrTransactionsFetch = errors.New("failed to fetch transactions")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded with status %d: %s", e.Code, e.Body)
}
