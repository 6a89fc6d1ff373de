package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWidgetNotFound    = errors.New("dashboard: widget not found")
	ErrInvalidChartType  = errors.New("dashboard: invalid chart type")
	ErrJoinPathMissing   = errors.New("dashboard: no relation joins the metric source")
	ErrRefreshInProgress = errors.New("dashboard: widget refresh already in progress")
	ErrValidation        = errors.New("dashboard: validation failed")
	ErrMissingReporting  = errors.New("dashboard: reporting client not configured")
)

// ErrorKind classifies query execution failures for user-facing messages.
type ErrorKind string

const (
	// KindServer means the reporting service answered with an error status or
	// a body that lacks the expected shape.
	KindServer ErrorKind = "server"
	// KindNoResponse means the request went out but nothing came back.
	KindNoResponse ErrorKind = "no_response"
	// KindLocal covers encoding, validation and other client-side failures.
	KindLocal ErrorKind = "local"
)

// QueryError is returned by reporting clients when a request fails.
type QueryError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString("dashboard: query failed")
	switch e.Kind {
	case KindServer:
		if e.StatusCode > 0 {
			fmt.Fprintf(&b, " (status %d)", e.StatusCode)
		}
	case KindNoResponse:
		b.WriteString(" (no response)")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *QueryError) Unwrap() error { return e.Err }

// UserMessage renders the categorized message shown when widget creation fails.
func (e *QueryError) UserMessage() string {
	msg := "Failed to create widget. "
	switch e.Kind {
	case KindServer:
		if e.StatusCode > 0 {
			msg += fmt.Sprintf("Server error: %d. ", e.StatusCode)
		} else {
			msg += "Server error. "
		}
		if e.Message != "" {
			msg += e.Message
		}
	case KindNoResponse:
		msg += "No response received from server."
	default:
		switch {
		case e.Message != "":
			msg += e.Message
		case e.Err != nil:
			msg += e.Err.Error()
		default:
			msg += "Unknown error occurred."
		}
	}
	return strings.TrimSpace(msg)
}

// UserMessage converts any error from the add pipeline into display text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.UserMessage()
	}
	return (&QueryError{Kind: KindLocal, Err: err}).UserMessage()
}

// NewServerError builds a KindServer error.
func NewServerError(status int, message string) *QueryError {
	return &QueryError{Kind: KindServer, StatusCode: status, Message: message}
}

// NewNoResponseError wraps a transport failure.
func NewNoResponseError(err error) *QueryError {
	return &QueryError{Kind: KindNoResponse, Err: err}
}

// NewLocalError wraps a client-side failure.
func NewLocalError(err error) *QueryError {
	return &QueryError{Kind: KindLocal, Err: err}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
