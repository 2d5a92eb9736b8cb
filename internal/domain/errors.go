package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNoSession indicates an action was attempted while logged out
	ErrNoSession = errors.New("not logged in")

	// ErrAuthInProgress indicates a login or registration is already running
	ErrAuthInProgress = errors.New("authentication already in progress")

	// ErrAlreadyLiked indicates the post was already liked from this client
	ErrAlreadyLiked = errors.New("post already liked")

	// ErrActionInFlight indicates the same mutation is still waiting for a response
	ErrActionInFlight = errors.New("action already in progress")

	// ErrNotFound indicates the requested entity is not known locally
	ErrNotFound = errors.New("not found")

	// ErrUnknownStation indicates the station id is not in the catalog
	ErrUnknownStation = errors.New("unknown radio station")

	// ErrUnauthorized indicates the endpoint rejected the session credentials
	ErrUnauthorized = errors.New("session is not authorized")
)

// ValidationError reports malformed input caught before any network call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthError reports that the auth endpoint rejected a login or registration
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Reason != "" {
		return "authentication failed: " + e.Reason
	}
	if e.Err != nil {
		return "authentication failed: " + e.Err.Error()
	}
	return "authentication failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError reports a request that did not complete successfully.
// StatusCode is zero when the request never got a response.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthorizationError reports a privileged action attempted without the required identity
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not permitted to %s", e.Action)
}
