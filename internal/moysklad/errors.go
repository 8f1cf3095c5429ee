package moysklad

import (
	"errors"
	"fmt"
)

// ErrNoCredentials is returned by NewClient when neither a token nor a
// username/password pair is configured.
var ErrNoCredentials = errors.New("moysklad: no authentication credentials provided (token or username/password required)")

// AuthError is a 401 from the remote API: credentials were rejected.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string {
	return "moysklad: authentication failed, check your token or credentials"
}

// PermissionError is a 403 from the remote API: the account lacks scope.
type PermissionError struct {
	Body string
}

func (e *PermissionError) Error() string {
	return "moysklad: access denied, check account permissions"
}

// APIError is any other non-2xx response from the remote API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moysklad: API error %d: %s", e.Status, e.Body)
}

// TransportError wraps a network-level failure (DNS, timeout, refused).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("moysklad: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error should abort a full sync run
// (credential, permission or connectivity problems are not recoverable
// within a run; per-record problems never surface as errors here).
func IsFatal(err error) bool {
	var authErr *AuthError
	var permErr *PermissionError
	var transportErr *TransportError
	return errors.Is(err, ErrNoCredentials) ||
		errors.As(err, &authErr) ||
		errors.As(err, &permErr) ||
		errors.As(err, &transportErr)
}
