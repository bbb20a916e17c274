package main

import (
	"net/http"

	"farmai/internal/authz"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) invalidRoleResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("invalid role", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONDenial(w, http.StatusBadRequest, denialEnvelope{
		Code:    authz.CodeInvalidRole,
		Message: err.Error(),
	})
}

// unauthorizedErrorResponse converts a credential failure into its
// structured denial. The reason code distinguishes missing, invalid and
// expired tokens; the message never leaks parser internals.
func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONDenial(w, http.StatusUnauthorized, denialEnvelope{
		Code:    authz.ReasonCode(err),
		Message: err.Error(),
	})
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

// forbiddenResponse reports an authenticated caller whose roles do not
// cover the required action, naming what would have sufficed.
func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, denied *authz.AccessDeniedError) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "error", denied.Error())

	granting := app.engine.Policy().GrantingRoles(denied.Required)
	roles := make([]string, len(granting))
	for i, role := range granting {
		roles[i] = string(role)
	}
	writeJSONDenial(w, http.StatusForbidden, denialEnvelope{
		Code:               authz.CodeAccessDenied,
		Message:            "insufficient permissions",
		RequiredPermission: string(denied.Required),
		SatisfiedByRoles:   roles,
	})
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

func (app *application) shuttingDownResponse(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusServiceUnavailable, "server is shutting down")
}
