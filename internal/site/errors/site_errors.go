package siteerrors

import (
	"net/http"

	"go-patrol/internal/shared/apperror"
)

var (
	ErrSiteNotFound = apperror.New(
		apperror.CodeNotFound,
		"Site not found",
		http.StatusNotFound,
	)
	ErrInvalidSiteID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid site id",
		http.StatusBadRequest,
	)
)
