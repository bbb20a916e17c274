package authz

import (
	"errors"
	"fmt"
	"strings"
)

// Stable error codes surfaced to callers. The HTTP layer maps these
// straight into response bodies and audit records.
const (
	CodeTokenMissing = "TOKEN_MISSING"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidRole  = "INVALID_ROLE"
	CodeAccessDenied = "ACCESS_DENIED"
)

var (
	// ErrTokenMissing means no bearer token was presented.
	ErrTokenMissing = errors.New("authorization token is missing")

	// ErrTokenInvalid covers malformed tokens, bad signatures and
	// disallowed signing algorithms.
	ErrTokenInvalid = errors.New("authorization token is invalid")

	// ErrTokenExpired means the signature checked out but the token is
	// past its expiry.
	ErrTokenExpired = errors.New("authorization token has expired")
)

// InvalidRoleError reports a role name outside the closed role set,
// raised at login or credential issuance.
type InvalidRoleError struct {
	Role Role
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("unrecognized role %q", string(e.Role))
}

// AccessDeniedError is an authenticated-but-insufficient denial. It keeps
// the attempted role set and the required action so the denial can be
// audited and the response can name what would have satisfied it.
type AccessDeniedError struct {
	Roles    []Role
	Required Permission
}

func (e *AccessDeniedError) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = string(r)
	}
	return fmt.Sprintf("roles [%s] lack permission %s", strings.Join(names, ", "), e.Required)
}

// ConfigurationError is fatal at startup and never produced at request
// time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "authz configuration: " + e.Reason
}

// ReasonCode maps a gateway error to its stable code. Unknown errors map
// to TOKEN_INVALID, the most conservative request-time bucket.
func ReasonCode(err error) string {
	var invalidRole *InvalidRoleError
	var denied *AccessDeniedError
	switch {
	case errors.Is(err, ErrTokenMissing):
		return CodeTokenMissing
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.As(err, &invalidRole):
		return CodeInvalidRole
	case errors.As(err, &denied):
		return CodeAccessDenied
	default:
		return CodeTokenInvalid
	}
}
