// Package apperror defines the engine's error taxonomy as structured errors
// with stable codes and HTTP status mapping.
//
// Three families, matching how callers must react:
//
//   - LED_* data-integrity errors: bad records or broken invariants. Treated
//     as assertions inside a trusted pipeline, validation failures at the
//     boundary. Never retried.
//   - POL_* policy errors: expected, recoverable, user-facing. The caller
//     re-prompts (e.g., asks for step-up verification) and retries.
//   - STO_* store/transport errors: retryable, except a conflict, which
//     means re-read and re-evaluate rather than retry the same write.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Retryable  bool   `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code, message string, httpStatus int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// IsRetryable reports whether the caller may safely retry the same
// operation. Policy and integrity errors are not retryable; store failures
// are, except conflicts.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// ---- Data integrity (LED) ----

// ErrSplitMismatch flags an expense whose splits do not sum to its total.
// expenseID may be empty for records refused before the store assigns one.
func ErrSplitMismatch(expenseID string, splitSum, total int64) *AppError {
	msg := fmt.Sprintf("splits sum to %d, total is %d", splitSum, total)
	if expenseID != "" {
		msg = fmt.Sprintf("expense %s: %s", expenseID, msg)
	}
	return New("LED_001", msg, http.StatusUnprocessableEntity)
}

// ErrUnbalanced flags a balance map that does not sum to zero.
func ErrUnbalanced(err error) *AppError {
	return Wrap("LED_002", "balances do not sum to zero", http.StatusInternalServerError, err)
}

// ErrCurrencyMismatch flags mixed currencies in one ledger computation.
func ErrCurrencyMismatch(err error) *AppError {
	return Wrap("LED_003", "ledger records mix currencies", http.StatusUnprocessableEntity, err)
}

// ---- Validation (VAL) ----

// Validation returns a generic request-validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ErrNotGroupMember flags an operation naming a member outside the group.
func ErrNotGroupMember(memberID, groupID string) *AppError {
	return New("VAL_002",
		fmt.Sprintf("member %s does not belong to group %s", memberID, groupID),
		http.StatusBadRequest)
}

// ---- Policy (POL) ----

// ErrStepUpRequired refuses confirmation of a high-value settlement without
// step-up verification. The record stays pending; the caller should prompt
// for verification and retry.
func ErrStepUpRequired(settlementID string) *AppError {
	return New("POL_001",
		fmt.Sprintf("settlement %s requires step-up verification before confirmation", settlementID),
		http.StatusForbidden)
}

// ErrTerminalState refuses a transition on an already-resolved settlement.
func ErrTerminalState(settlementID string, status string) *AppError {
	return New("POL_002",
		fmt.Sprintf("settlement %s is already %s", settlementID, status),
		http.StatusConflict)
}

// ErrStepUpVerificationFailed flags a failed PIN or token check.
func ErrStepUpVerificationFailed() *AppError {
	return New("POL_003", "step-up verification failed", http.StatusForbidden)
}

// ---- Store & transport (STO) ----

// ErrStore wraps a store-layer failure. Retryable.
func ErrStore(err error) *AppError {
	e := Wrap("STO_001", "store operation failed", http.StatusServiceUnavailable, err)
	e.Retryable = true
	return e
}

// ErrConflict wraps a compare-and-set conflict: the settlement was resolved
// by another writer. Not blindly retryable; re-read first.
func ErrConflict(err error) *AppError {
	return Wrap("STO_002", "settlement was already resolved by another device", http.StatusConflict, err)
}

// ErrNotFound flags a missing record.
func ErrNotFound(entity, id string) *AppError {
	return New("STO_003", fmt.Sprintf("%s %s not found", entity, id), http.StatusNotFound)
}
