package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"farmai/internal/audit"
	"farmai/internal/auth"
	"farmai/internal/authz"
)

type principalKey string

const principalCtx principalKey = "principal"

// getPrincipalFromContext returns the validated claims placed by
// AuthTokenMiddleware. Nil means the route was not behind the gateway.
func getPrincipalFromContext(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(principalCtx).(*auth.Claims)
	return claims
}

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			// decode it
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			// check the credentials
			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthTokenMiddleware extracts and validates the bearer credential and
// loads the claims into the request context. Every failure is audited as
// a denial with its reason code; the protected action itself never runs.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.auditDenial(r, nil, "", authz.CodeTokenMissing)
			app.unauthorizedErrorResponse(w, r, authz.ErrTokenMissing)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.auditDenial(r, nil, "", authz.CodeTokenMissing)
			app.unauthorizedErrorResponse(w, r, authz.ErrTokenMissing)
			return
		}

		claims, err := app.authenticator.ValidateToken(parts[1])
		if err != nil {
			app.auditDenial(r, nil, "", authz.ReasonCode(err))
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalCtx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates a handler behind one required action. Order is
// fixed: decision, then audit-record, then handler. A request whose
// connection is already gone is dropped without an audit record, since
// the action never executes.
func (app *application) RequirePermission(action authz.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := getPrincipalFromContext(r)
			if claims == nil {
				app.auditDenial(r, nil, action, authz.CodeTokenMissing)
				app.unauthorizedErrorResponse(w, r, authz.ErrTokenMissing)
				return
			}

			decision := app.engine.Decide(claims.Roles, action)
			if !decision.Allow {
				denied := &authz.AccessDeniedError{Roles: claims.Roles, Required: action}
				app.auditDenial(r, claims, action, authz.CodeAccessDenied)
				app.forbiddenResponse(w, r, denied)
				return
			}

			select {
			case <-r.Context().Done():
				return
			default:
			}

			app.audit.Record(audit.Record{
				Identity: claims.Identity,
				Roles:    roleNames(claims.Roles),
				Endpoint: r.URL.Path,
				Method:   r.Method,
				Action:   string(action),
				Outcome:  audit.OutcomeAllowed,
			})
			next.ServeHTTP(w, r)
		})
	}
}

// auditDenial records the denial itself; the protected action is not
// recorded because it never ran.
func (app *application) auditDenial(r *http.Request, claims *auth.Claims, action authz.Permission, reason string) {
	rec := audit.Record{
		Endpoint: r.URL.Path,
		Method:   r.Method,
		Action:   string(action),
		Outcome:  audit.OutcomeDenied,
		Reason:   reason,
	}
	if claims != nil {
		rec.Identity = claims.Identity
		rec.Roles = roleNames(claims.Roles)
	}
	app.audit.Record(rec)
}

func roleNames(roles []authz.Role) []string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return names
}

// ReadinessMiddleware refuses new work once graceful shutdown has begun.
func (app *application) ReadinessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.inShutdown.Load() {
			app.shuttingDownResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter.String())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
