package odoo

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrAuth is returned when the session cannot be established.
	ErrAuth = eris.New("odoo: authentication failed")
	// ErrFalsyResult is returned when a call succeeds at the transport level
	// but Odoo answers with no result, null or false.
	ErrFalsyResult = eris.New("odoo: falsy result")
)

// Error is a JSON-RPC error object returned by Odoo.
type Error struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    ErrorData `json:"data"`
}

// ErrorData carries the server-side exception.
type ErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo: rpc error %d: %s: %s", e.Code, e.Message, e.Data.Message)
	}
	return fmt.Sprintf("odoo: rpc error %d: %s", e.Code, e.Message)
}

// StatusError is returned for non-200 HTTP responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("odoo: unexpected status %d: %s", e.Code, e.Body)
}
