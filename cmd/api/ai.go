package main

import (
	"net/http"

	"farmai/internal/fixtures"
)

// The AI endpoints are the mock advisory surface: each one accepts the
// request body for interface compatibility and returns a pre-baked
// payload. The interesting work all happens in the gateway in front.

func (app *application) agriculturalAdviceHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, fixtures.AgriculturalAdvice); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) greenhouseAdviceHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, fixtures.GreenhouseAdvice); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) assessBusinessHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, fixtures.BusinessAssessment); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) marketAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, fixtures.MarketInsights); err != nil {
		app.internalServerError(w, r, err)
	}
}
