package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"server/internal/generation"
	"server/internal/infra"
)

// GenerationHandler runs one generation request through the pipeline.
type GenerationHandler interface {
	Handle(ctx context.Context, req generation.Request) (int, generation.Response)
}

// RecordLister reads the persisted generation log, newest first.
type RecordLister interface {
	List() []generation.Record
}

// App carries the dependencies the HTTP handlers need.
type App struct {
	Service    GenerationHandler
	Records    RecordLister
	ContentDir string
	Logger     infra.Logger
}

func NewApp(service GenerationHandler, records RecordLister, contentDir string, logger infra.Logger) *App {
	return &App{Service: service, Records: records, ContentDir: contentDir, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
