package errors

import (
	"net/http"

	"go-leaveflow/internal/shared/apperror"
)

var (
	ErrWorkflowNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave workflow not found",
		http.StatusNotFound,
	)

	ErrInvalidThreadID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid thread id",
		http.StatusBadRequest,
	)

	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"Decision must be approved or rejected",
		http.StatusBadRequest,
	)

	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"Leave workflow is not waiting for this action",
		http.StatusConflict,
	)

	ErrVersionConflict = apperror.New(
		apperror.CodeConflict,
		"Leave workflow was modified concurrently, please retry",
		http.StatusConflict,
	)

	ErrOpenRunExists = apperror.New(
		apperror.CodeConflict,
		"An open leave workflow already covers these dates",
		http.StatusConflict,
	)

	ErrNotAssignedApprover = apperror.New(
		apperror.CodeForbidden,
		"Only the reporting manager can decide this request",
		http.StatusForbidden,
	)

	ErrNotRunOwner = apperror.New(
		apperror.CodeForbidden,
		"Only the requesting employee can cancel this request",
		http.StatusForbidden,
	)
)
