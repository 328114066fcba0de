package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotResponding is returned when the backend cannot be reached at all,
	// the equivalent of a browser request that never got a status.
	ErrNotResponding = errors.New("hawkular alerting is not responding")
	// ErrNoTenant is returned before any request when no tenant is known.
	ErrNoTenant = errors.New("no tenant selected")
	// ErrInvalidInput is returned for input that cannot be sent.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError is a non-2xx response of the backend.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
	// Message is the backend errorMsg, when the body carries one.
	Message string
}

func newAPIError(code int, body []byte) *APIError {
	e := &APIError{StatusCode: code, Status: http.StatusText(code), Body: string(body)}
	var msg struct {
		ErrorMsg string `json:"errorMsg"`
	}
	if json.Unmarshal(body, &msg) == nil {
		e.Message = msg.ErrorMsg
	}
	return e
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Describe renders err the way operators are shown backend failures.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		msg := fmt.Sprintf("Status [%d] %s", apiErr.StatusCode, apiErr.Status)
		if apiErr.Message != "" {
			msg += ": " + apiErr.Message
		}
		return msg
	case errors.Is(err, ErrNotResponding):
		return "Hawkular Alerting is not responding"
	}
	return err.Error()
}

// deleted is the body of the bulk delete endpoints. The count is sent as a
// string by some backend versions.
type deleted struct {
	Deleted json.Number `json:"deleted"`
}

func (d deleted) count() (int, error) {
	if d.Deleted == "" {
		return 0, nil
	}
	n, err := d.Deleted.Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to decode deleted count: %w", err)
	}
	return int(n), nil
}
