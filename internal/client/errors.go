package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

const (
	msgNotFound       = "Not found"
	msgUnknown        = "Something went wrong"
	msgDownloadFailed = "Download failed"
)

// APIError is returned for every non-2xx response. Message is safe to show
// to a user.
type APIError struct {
	Status  int
	Kind    Kind
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.Kind == KindUnavailable
}

type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func kindFor(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// newAPIError builds the error for a failed response. Only validation and
// unavailable bodies are surfaced; field errors win over the summary message.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Kind: kindFor(status), Message: msgUnknown}
	switch e.Kind {
	case KindNotFound:
		e.Message = msgNotFound
	case KindValidation, KindUnavailable:
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err != nil {
			return e
		}
		if parsed.Message != "" {
			e.Message = parsed.Message
		}
		if len(parsed.Errors) > 0 {
			e.Message = strings.Join(parsed.Errors, ", ")
		}
	}
	return e
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsValidation reports whether err is a 400 from the API.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsRetryable reports whether err is an API error worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

func kindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}
