// Package common defines shared constants and the error taxonomy used across
// the credential service. Callers should use errors.Is for sentinels and
// KindOf to classify arbitrary errors.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Generic internal failure, the only message infrastructure errors are
	// allowed to surface.
	ErrorInternal = errors.New("internal error")

	// Conflict errors.
	ErrAccountExists = &Error{Kind: KindConflict, Msg: "User already exists"}

	// Authentication errors. Unknown email and wrong password both map to
	// ErrInvalidCredentials.
	ErrMissingCredentials = &Error{Kind: KindAuthentication, Msg: "All fields must be filled"}
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Msg: "Invalid credentials"}

	// Authorization errors produced by the access gate.
	ErrAuthorizationRequired = &Error{Kind: KindAuthorization, Msg: "Authorization token required"}
	ErrNotAuthorized         = &Error{Kind: KindAuthorization, Msg: "Request is not authorized"}
	ErrAccountNotFound       = &Error{Kind: KindAuthorization, Msg: "User not found"}

	// Configuration errors.
	ErrMissingSigningSecret = errors.New("signing secret is not configured")
)
