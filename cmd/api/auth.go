package main

import (
	"errors"
	"net/http"
	"time"

	"farmai/internal/authz"
)

type LoginPayload struct {
	Identity string   `json:"identity" validate:"required,max=255"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
}

// TokenResponse is the login success body: the signed credential plus
// its lifetime so clients know when to re-login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	Identity    string    `json:"identity"`
	Roles       []string  `json:"roles"`
}

// loginHandler issues a credential for the declared identity and roles.
// There is no account store behind this service; the identity is taken
// as supplied and trusted for one token lifetime. Unrecognized role
// names are rejected here, before any credential exists.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	roles := make([]authz.Role, len(payload.Roles))
	for i, name := range payload.Roles {
		roles[i] = authz.Role(name)
	}

	token, claims, err := app.authenticator.IssueToken(payload.Identity, roles)
	if err != nil {
		var invalidRole *authz.InvalidRoleError
		if errors.As(err, &invalidRole) {
			app.invalidRoleResponse(w, r, invalidRole)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	response := TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(app.authenticator.TTL().Seconds()),
		ExpiresAt:   claims.ExpiresAt,
		Identity:    claims.Identity,
		Roles:       roleNames(claims.Roles),
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// currentPrincipalHandler echoes the caller's identity, embedded roles
// and the permissions those roles expand to under the current catalog.
func (app *application) currentPrincipalHandler(w http.ResponseWriter, r *http.Request) {
	claims := getPrincipalFromContext(r)
	if claims == nil {
		app.unauthorizedErrorResponse(w, r, authz.ErrTokenMissing)
		return
	}

	perms := app.engine.EffectivePermissions(claims.Roles)
	permNames := make([]string, len(perms))
	for i, p := range perms {
		permNames[i] = string(p)
	}

	response := map[string]any{
		"identity":    claims.Identity,
		"roles":       roleNames(claims.Roles),
		"permissions": permNames,
		"expires_at":  claims.ExpiresAt,
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
