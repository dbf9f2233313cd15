package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/infra"
	"studio/internal/session"
	"studio/internal/studio"
)

type App struct {
	Studio         *studio.Service
	Sessions       *session.Manager
	Logger         *infra.Logger
	MaxUploadBytes int64
}

func NewApp(svc *studio.Service, sessions *session.Manager, logger *infra.Logger, maxUploadBytes int64) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &App{Studio: svc, Sessions: sessions, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
