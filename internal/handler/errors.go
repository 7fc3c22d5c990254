package handler

import (
	"errors"
	"net/http"

	customError "github.com/sovannra/microfin/pkg/errors"
	"github.com/sovannra/microfin/pkg/response"
)

// writeError maps business errors to HTTP status codes and everything else
// to a 500.
func writeError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		response.InternalServerError(w, "internal error", err)
		return
	}

	status := http.StatusInternalServerError
	switch be.Code {
	case customError.ErrCodeLoanNotFound,
		customError.ErrCodeClientNotFound,
		customError.ErrCodeProductNotFound,
		customError.ErrCodeApplicationNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeInvalidInput,
		customError.ErrCodeInvalidLoanState,
		customError.ErrCodeTermOutOfRange:
		status = http.StatusBadRequest
	case customError.ErrCodeDuplicateNationalID,
		customError.ErrCodeClientHasActiveLoans,
		customError.ErrCodeApplicationNotDeletable,
		customError.ErrCodeApplicationNotApproved:
		status = http.StatusConflict
	}

	response.ErrorWithCode(w, status, be.Message, be.Code, be.Err)
}
