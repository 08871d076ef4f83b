package common

import "errors"

// Kind classifies a failure so transports can map it to a status without
// inspecting messages.
type Kind int

const (
	// KindInfrastructure covers store outages, misconfiguration and anything
	// not otherwise classified. Never surfaced verbatim.
	KindInfrastructure Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	default:
		return "infrastructure"
	}
}

// Error is an expected failure with a caller-facing message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// NewValidationError returns a validation failure carrying msg verbatim.
func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// KindOf reports the Kind of err. Errors that are not (and do not wrap) an
// *Error are infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
