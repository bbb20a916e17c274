package main

import (
	"net/http"
	"time"
)

type VerifyFarmerPayload struct {
	FarmerID string `json:"farmer_id" validate:"required,max=255"`
	Note     string `json:"note" validate:"max=1024"`
}

// verifyFarmerHandler is the privileged regulatory action. The mock
// implementation acknowledges the verification; the audit trail of who
// invoked it is produced by the gateway middleware.
func (app *application) verifyFarmerHandler(w http.ResponseWriter, r *http.Request) {
	var payload VerifyFarmerPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims := getPrincipalFromContext(r)

	response := map[string]any{
		"farmer_id":   payload.FarmerID,
		"status":      "verified",
		"verified_by": claims.Identity,
		"verified_at": time.Now().UTC(),
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
