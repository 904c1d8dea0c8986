package balanceerrors

import (
	"net/http"

	"go-leaveflow/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"insufficient leave balance",
		http.StatusConflict,
	)
	// ErrLedgerInvariant marks a caller bug, such as committing more days
	// than are pending. It is never a user error.
	ErrLedgerInvariant = apperror.New(
		apperror.CodeInternalError,
		"leave balance ledger invariant violated",
		http.StatusInternalServerError,
	)
)
