package types

import (
	"errors"
	"fmt"
)

var (
	// ErrQueryFailed wraps a failed chain read.
	ErrQueryFailed = errors.New("chain query failed")
	// ErrSubmissionRejected wraps a transaction the chain refused.
	ErrSubmissionRejected = errors.New("transaction rejected")
	// ErrUnchangedVersion marks a rejection caused by resubmitting the code
	// and interface the account already runs.
	ErrUnchangedVersion = errors.New("account already runs this version")
	// ErrMalformedInterface marks an interface whose actions reference
	// unknown structs.
	ErrMalformedInterface = errors.New("malformed contract interface")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrAlreadyGranted     = errors.New("code permission already granted")
	ErrNoSession          = errors.New("no authenticated session")
	ErrDeploymentInFlight = errors.New("deployment already in flight for account")
	ErrInvalidCode        = errors.New("invalid contract code")
	ErrRAMOverflow        = errors.New("ram purchase exceeds action limit")
	ErrUnknownAction      = errors.New("unknown contract action")
	ErrUnknownTable       = errors.New("unknown contract table")
)

// Well known chain exception codes.
const (
	ChainCodeSetExactCode     = 3160008
	ChainCodeRAMUsageExceeded = 3080001
	ChainCodeMissingAuth      = 3090004
)

// ChainError is a structured rejection reported by the chain.
type ChainError struct {
	// HTTP status of the response, zero for simulated chains
	Status  int
	Code    int
	Name    string
	Message string
}

func (e *ChainError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
	}
	return e.Message
}
