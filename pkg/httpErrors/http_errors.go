package httpErrors

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	ErrBadRequest          = "Bad request"
	ErrNotFound            = "Not Found"
	ErrConflict            = "Conflict"
	ErrServiceUnavailable  = "Service unavailable"
	ErrRequestTimeout      = "Request Timeout"
	ErrInternalServerError = "Internal Server Error"
)

var (
	BadRequest          = errors.New("Bad request")
	NotFound            = errors.New("Not Found")
	Conflict            = errors.New("Conflict")
	ServiceUnavailable  = errors.New("Service unavailable")
	RequestTimeoutError = errors.New("Request Timeout")
	InternalServerError = errors.New("Internal Server Error")
)

type RestErr interface {
	Status() int
	Error() string
	Causes() interface{}
}

type RestError struct {
	ErrStatus  int         `json:"status,omitempty"`
	ErrError   string      `json:"error,omitempty"`
	ErrCauses  interface{} `json:"-"`
	ErrDetails interface{} `json:"details,omitempty"`
}

func (e RestError) Error() string {
	return fmt.Sprintf("status: %d - errors: %s - causes: %v", e.ErrStatus, e.ErrError, e.ErrCauses)
}

func (e RestError) Status() int {
	return e.ErrStatus
}

func (e RestError) Causes() interface{} {
	return e.ErrCauses
}

func NewRestError(status int, err string, causes interface{}) RestErr {
	return RestError{
		ErrStatus: status,
		ErrError:  err,
		ErrCauses: causes,
	}
}

// NewRestErrorWithMessage keeps the wrapped error as the public message.
func NewRestErrorWithMessage(status int, err string, causes error) RestErr {
	msg := err
	if causes != nil {
		msg = causes.Error()
	}
	return RestError{
		ErrStatus: status,
		ErrError:  msg,
		ErrCauses: causes,
	}
}

// NewRestErrorWithDetails attaches a JSON payload returned next to the message.
func NewRestErrorWithDetails(status int, err string, causes error, details interface{}) RestErr {
	restErr := NewRestErrorWithMessage(status, err, causes).(RestError)
	restErr.ErrDetails = details
	return restErr
}

func NewBadRequestError(causes interface{}) RestErr {
	return RestError{
		ErrStatus: http.StatusBadRequest,
		ErrError:  BadRequest.Error(),
		ErrCauses: causes,
	}
}

func NewNotFoundError(causes error) RestErr {
	return NewRestErrorWithMessage(http.StatusNotFound, ErrNotFound, causes)
}

func NewConflictError(causes error) RestErr {
	return NewRestErrorWithMessage(http.StatusConflict, ErrConflict, causes)
}

func NewInternalServerError(causes interface{}) RestErr {
	return RestError{
		ErrStatus: http.StatusInternalServerError,
		ErrError:  InternalServerError.Error(),
		ErrCauses: causes,
	}
}

func ParseErrors(err error) RestErr {
	var restErr RestErr
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &restErr):
		return restErr
	case errors.As(err, &validationErrs):
		return NewRestError(http.StatusBadRequest, validationErrs.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewRestError(http.StatusRequestTimeout, RequestTimeoutError.Error(), err)
	case errors.Is(errors.Cause(err), BadRequest):
		return NewRestError(http.StatusBadRequest, err.Error(), err)
	default:
		return NewInternalServerError(err)
	}
}

func ErrorResponse(err error) (int, interface{}) {
	restErr := ParseErrors(err)
	return restErr.Status(), restErr
}
