// Package fixtures holds the canned JSON payloads the mock AI and
// analytics endpoints serve. Payloads are embedded at build time and
// returned verbatim; no handler interprets them.
package fixtures

import (
	"embed"
	"encoding/json"
)

//go:embed *.json
var files embed.FS

var (
	AgriculturalAdvice = mustLoad("agricultural_advice.json")
	BusinessAssessment = mustLoad("business_assessment.json")
	MarketInsights     = mustLoad("market_insights.json")
	GreenhouseAdvice   = mustLoad("greenhouse_advice.json")
	CarbonCredits      = mustLoad("carbon_credits.json")
)

func mustLoad(name string) json.RawMessage {
	b, err := files.ReadFile(name)
	if err != nil {
		panic("fixtures: " + err.Error())
	}
	return json.RawMessage(b)
}
