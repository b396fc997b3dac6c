package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/video-summarizer/internal/domain/auth"
	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	"github.com/yanqian/video-summarizer/internal/domain/video"
	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// statusByCode maps domain error codes onto HTTP statuses.
var statusByCode = map[string]int{
	apperrors.CodeInvalidInput:         http.StatusBadRequest,
	apperrors.CodeNotFound:             http.StatusNotFound,
	apperrors.CodeCanceled:             http.StatusRequestTimeout,
	auth.CodeInvalidToken:              http.StatusUnauthorized,
	summarizer.CodeModelInvocation:     http.StatusBadGateway,
	summarizer.CodeValidationExhausted: http.StatusUnprocessableEntity,
	video.CodeTranscriptUnavailable:    http.StatusNotFound,
	video.CodeQueue:                    http.StatusServiceUnavailable,
}

// fromDomainError converts a service error into an HTTPError keeping the domain code.
func fromDomainError(err error) *HTTPError {
	code := apperrors.Code(err)
	if code == "" {
		return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
	}
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError && appErr.Message != "" {
		message = appErr.Message
	}
	return NewHTTPError(status, code, message, err)
}
