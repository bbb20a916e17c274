package auth

import (
	"time"

	"farmai/internal/authz"
)

// Claims is the verified content of a credential: who the caller is, the
// roles declared at login, and the token's time bounds. Roles come back
// exactly as embedded at issuance; they are not re-checked against the
// live catalog, so a catalog change does not affect tokens already in
// the wild until they expire.
type Claims struct {
	Identity  string
	Roles     []authz.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Authenticator interface {
	IssueToken(identity string, roles []authz.Role) (string, *Claims, error)
	ValidateToken(token string) (*Claims, error)
	TTL() time.Duration
}
