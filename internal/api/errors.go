package api

import (
	"errors"
	"net/http"

	"github.com/heat-chamber/hmi/internal/app"
)

// ErrBadRequest marks a malformed request body.
var ErrBadRequest = errors.New("BAD_REQUEST")

// statusFor maps a page error to its HTTP status and envelope code.
func statusFor(err error) (int, string) {
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest, app.CodeBadRequest
	}
	code := app.Code(err)
	switch code {
	case app.CodeOK:
		return http.StatusOK, code
	case app.CodeBadRequest:
		return http.StatusBadRequest, code
	case app.CodeUnavailable:
		return http.StatusServiceUnavailable, code
	default:
		return http.StatusInternalServerError, code
	}
}

// writePageError writes err in the envelope format.
func writePageError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	WriteError(w, status, code, msg, nil)
}
