package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"farmai/internal/authz"
)

type JWTAuthenticator struct {
	secret string
	aud    string
	iss    string
	ttl    time.Duration
	policy *authz.Policy
	now    func() time.Time
}

func NewJWTAuthenticator(secret, aud, iss string, ttl time.Duration, policy *authz.Policy) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret: secret,
		aud:    aud,
		iss:    iss,
		ttl:    ttl,
		policy: policy,
		now:    time.Now,
	}
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// IssueToken signs a credential binding the identity to its declared
// roles for one TTL. Roles are deduplicated before embedding; any role
// outside the closed set rejects the whole request.
func (a *JWTAuthenticator) IssueToken(identity string, roles []authz.Role) (string, *Claims, error) {
	if identity == "" {
		return "", nil, fmt.Errorf("identity must not be empty")
	}
	if len(roles) == 0 {
		return "", nil, fmt.Errorf("at least one role is required")
	}

	seen := make(map[authz.Role]bool, len(roles))
	deduped := make([]authz.Role, 0, len(roles))
	for _, role := range roles {
		if !a.policy.Known(role) {
			return "", nil, &authz.InvalidRoleError{Role: role}
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		deduped = append(deduped, role)
	}

	issuedAt := a.now()
	expiresAt := issuedAt.Add(a.ttl)

	names := make([]string, len(deduped))
	for i, role := range deduped {
		names[i] = string(role)
	}
	claims := tokenClaims{
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    a.iss,
			Audience:  jwt.ClaimStrings{a.aud},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.secret))
	if err != nil {
		return "", nil, err
	}

	return signed, &Claims{
		Identity:  identity,
		Roles:     deduped,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken verifies signature and expiry and recovers the embedded
// identity and roles. The signing method is pinned to HS256 so a token
// signed with anything else fails as invalid rather than being parsed
// with a substituted algorithm.
func (a *JWTAuthenticator) ValidateToken(raw string) (*Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return a.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authz.ErrTokenExpired
		}
		return nil, authz.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, authz.ErrTokenInvalid
	}

	roles := make([]authz.Role, len(claims.Roles))
	for i, name := range claims.Roles {
		roles[i] = authz.Role(name)
	}
	out := &Claims{
		Identity: claims.Subject,
		Roles:    roles,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// TTL is the fixed credential lifetime.
func (a *JWTAuthenticator) TTL() time.Duration {
	return a.ttl
}
