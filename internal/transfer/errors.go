package transfer

import (
	"errors"
	"fmt"
)

// User-correctable rejections. The caller decides the UI messaging and
// whether to retry; the coordinator never retries on its own.
var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrMissingOperator = errors.New("operator id is required")
	ErrReelNotFound    = errors.New("reel not found")
	ErrMachineNotFound = errors.New("machine not found")
)

// MachineAssignmentError reports a failure to assign the reel after the
// stock decrement already succeeded. By the time the caller sees it the
// decrement has been compensated, so no transfer happened.
type MachineAssignmentError struct {
	MachineID string
	Cause     error
}

func (e *MachineAssignmentError) Error() string {
	return fmt.Sprintf("failed to assign reel to machine %s: %v", e.MachineID, e.Cause)
}

func (e *MachineAssignmentError) Unwrap() error { return e.Cause }

// LedgerAppendError reports a failure to record the transfer in the
// ledger. Both the stock decrement and the machine assignment have been
// reversed before this error surfaces.
type LedgerAppendError struct {
	Cause error
}

func (e *LedgerAppendError) Error() string {
	return fmt.Sprintf("failed to append ledger entry: %v", e.Cause)
}

func (e *LedgerAppendError) Unwrap() error { return e.Cause }
