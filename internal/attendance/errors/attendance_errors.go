package attendanceerrors

import (
	"net/http"

	"go-patrol/internal/shared/apperror"
)

const invalidCodeMessage = "Invalid QR code, please scan again"

var (
	ErrInvalidCode = apperror.New(
		apperror.CodeInvalidCode,
		invalidCodeMessage,
		http.StatusBadRequest,
	)
	// Shown to the guard exactly like ErrInvalidCode; kept distinct for logs and errors.Is.
	ErrDuplicateCheckIn = apperror.New(
		apperror.CodeInvalidCode,
		invalidCodeMessage,
		http.StatusBadRequest,
	)
	ErrSessionAlreadyOpen = apperror.New(
		apperror.CodeConflict,
		"Another check-in is already open for this guard, please scan again",
		http.StatusConflict,
	)
	ErrSessionChanged = apperror.New(
		apperror.CodeConflict,
		"The attendance session changed while scanning, please scan again",
		http.StatusConflict,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrRecordAlreadyClosed = apperror.New(
		apperror.CodeInvalidState,
		"Attendance record is already closed",
		http.StatusConflict,
	)
	ErrInvalidCheckoutTime = apperror.New(
		apperror.CodeInvalidInput,
		"corrected_checkout_time must be RFC3339, not before check-in and not in the future",
		http.StatusBadRequest,
	)
	ErrInvalidGuardID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid guard id",
		http.StatusBadRequest,
	)
	ErrInvalidPendingSite = apperror.New(
		apperror.CodeInvalidInput,
		"invalid pending_site_id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)
