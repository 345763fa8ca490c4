package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/generation"
)

// Generate handles POST /api/generate.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.json(w, http.StatusBadRequest, generation.Failure("invalid JSON payload"))
		return
	}
	status, resp := a.Service.Handle(r.Context(), req)
	a.json(w, status, resp)
}

// ListGenerations handles GET /api/generations. It returns the metadata log
// newest first so a fresh browser session can rebuild its gallery.
func (a *App) ListGenerations(w http.ResponseWriter, r *http.Request) {
	records := a.Records.List()
	if records == nil {
		records = []generation.Record{}
	}
	a.json(w, http.StatusOK, records)
}
