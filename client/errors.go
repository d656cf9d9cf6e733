package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Kind groups API failures by how a caller should react to them.
type Kind int

const (
	KindUnexpected Kind = iota
	// KindValidation covers rejected input and conflicts (HTTP 400).
	KindValidation
	KindNotFound
	KindServer
	KindConnectivity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unexpected"
	}
}

// Error is returned for every non-2xx response and for transport failures.
// Message is the server's "error" field when one was sent.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err, or KindUnexpected when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnexpected
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnexpected
	}
}

func errorFromResponse(resp *http.Response) *Error {
	apiErr := &Error{
		Kind:    kindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Message != "":
			apiErr.Message = body.Message
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}
