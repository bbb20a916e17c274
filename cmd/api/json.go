package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}

// denialEnvelope is the structured shape of every gateway denial: a
// stable code plus, for permission denials, what would have satisfied
// the request. Never internal detail, never a stack trace.
type denialEnvelope struct {
	Success            bool     `json:"success"`
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	Status             int      `json:"status"`
	RequiredPermission string   `json:"required_permission,omitempty"`
	SatisfiedByRoles   []string `json:"satisfied_by_roles,omitempty"`
}

func writeJSONDenial(w http.ResponseWriter, status int, env denialEnvelope) error {
	env.Success = false
	env.Status = status
	return writeJSON(w, status, &env)
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}
