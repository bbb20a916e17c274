package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"farmai/internal/authz"
)

const testSecret = "test-secret-do-not-use"

func newTestAuthenticator(t *testing.T) *JWTAuthenticator {
	t.Helper()
	policy, err := authz.NewPolicy(authz.DefaultConfig())
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return NewJWTAuthenticator(testSecret, "farmai", "farmai", time.Hour, policy)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t)

	token, issued, err := a.IssueToken("farmer1", []authz.Role{authz.RoleFarmer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := issued.ExpiresAt.Sub(issued.IssuedAt); got != time.Hour {
		t.Fatalf("expected 1h lifetime, got %s", got)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Identity != "farmer1" {
		t.Fatalf("expected identity farmer1, got %s", claims.Identity)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != authz.RoleFarmer {
		t.Fatalf("expected roles [Farmer], got %v", claims.Roles)
	}
}

func TestIssueDeduplicatesRoles(t *testing.T) {
	a := newTestAuthenticator(t)

	_, issued, err := a.IssueToken("coop1", []authz.Role{
		authz.RoleCooperative, authz.RoleFarmer, authz.RoleCooperative,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(issued.Roles) != 2 {
		t.Fatalf("expected deduplicated roles, got %v", issued.Roles)
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	a := newTestAuthenticator(t)

	_, _, err := a.IssueToken("w1", []authz.Role{authz.RoleFarmer, "Wizard"})
	if err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
	var invalidRole *authz.InvalidRoleError
	if !errors.As(err, &invalidRole) {
		t.Fatalf("expected InvalidRoleError, got %T", err)
	}
	if invalidRole.Role != "Wizard" {
		t.Fatalf("error must name the offending role, got %q", invalidRole.Role)
	}
}

func TestIssueRejectsEmptyInputs(t *testing.T) {
	a := newTestAuthenticator(t)

	if _, _, err := a.IssueToken("", []authz.Role{authz.RoleFarmer}); err == nil {
		t.Fatal("expected empty identity to be rejected")
	}
	if _, _, err := a.IssueToken("farmer1", nil); err == nil {
		t.Fatal("expected empty role set to be rejected")
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	a := newTestAuthenticator(t)

	issuedAt := time.Date(2024, 6, 18, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return issuedAt }

	token, issued, err := a.IssueToken("farmer1", []authz.Role{authz.RoleFarmer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One instant before expiry still validates.
	a.now = func() time.Time { return issued.ExpiresAt.Add(-time.Second) }
	if _, err := a.ValidateToken(token); err != nil {
		t.Fatalf("token just before expiry should validate: %v", err)
	}

	// Exactly at expiry the token is already dead.
	a.now = func() time.Time { return issued.ExpiresAt }
	if _, err := a.ValidateToken(token); !errors.Is(err, authz.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at expiresAt, got %v", err)
	}

	a.now = func() time.Time { return issued.ExpiresAt.Add(time.Minute) }
	if _, err := a.ValidateToken(token); !errors.Is(err, authz.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after expiry, got %v", err)
	}
}

func TestValidateTamperedSignature(t *testing.T) {
	a := newTestAuthenticator(t)

	token, _, err := a.IssueToken("farmer1", []authz.Role{authz.RoleFarmer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact JWS, got %d segments", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := a.ValidateToken(tampered); !errors.Is(err, authz.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered signature, got %v", err)
	}
}

func TestValidateRejectsForeignAlgorithm(t *testing.T) {
	a := newTestAuthenticator(t)

	claims := tokenClaims{
		Roles: []string{string(authz.RoleAdmin)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "attacker",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	// Same secret, different HMAC variant: must still be rejected.
	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.ValidateToken(hs384); !errors.Is(err, authz.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for HS384 token, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.ValidateToken(none); !errors.Is(err, authz.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none token, got %v", err)
	}
}

func TestValidateMalformedToken(t *testing.T) {
	a := newTestAuthenticator(t)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		if _, err := a.ValidateToken(raw); !errors.Is(err, authz.ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", raw, err)
		}
	}
}

func TestValidateDoesNotRecheckCatalog(t *testing.T) {
	a := newTestAuthenticator(t)

	token, _, err := a.IssueToken("farmer1", []authz.Role{authz.RoleFarmer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Swap in a policy where Farmer no longer exists. Validation still
	// returns the embedded roles untouched; they stay live until expiry.
	restricted, err := authz.NewPolicy(map[authz.Role]authz.RoleConfig{
		authz.RoleAdmin: {Grants: []authz.Permission{authz.PermAll}},
	})
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	a.policy = restricted

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != authz.RoleFarmer {
		t.Fatalf("embedded roles must come back unmodified, got %v", claims.Roles)
	}
}
