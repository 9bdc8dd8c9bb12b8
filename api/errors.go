package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized: authentication required")
	ErrForbidden    = errors.New("forbidden: missing permission")
)

// ErrorResponse is the body the backend sends with a non-2xx status.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Success    bool   `json:"success"`
	Code       int    `json:"error"`
	Message    string `json:"message"`
}

func (e ErrorResponse) Error() string {
	if e.Message == "" {
		return httpError(e.StatusCode).Error()
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func (e ErrorResponse) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// httpError returns a generic error for the given http status code
func httpError(status int) error {
	return fmt.Errorf("%d %s", status, http.StatusText(status))
}
