package main

import (
	"net/http"

	"farmai/internal/fixtures"
)

func (app *application) carbonAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, fixtures.CarbonCredits); err != nil {
		app.internalServerError(w, r, err)
	}
}
