package apperror

import (
	"context"
	"errors"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP flattens any error into what the response layer writes. Errors that
// are not AppErrors never leak their text.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPError{
			Status:  ErrServiceUnavailable.HTTPStatus,
			Code:    ErrServiceUnavailable.Code,
			Message: ErrServiceUnavailable.Message,
		}
	}
	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}
