package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/service"

	"github.com/rs/zerolog"
)

// App bundles the handler dependencies. Handles are constructed once at
// startup and never mutated afterwards.
type App struct {
	Logger   zerolog.Logger
	Products domain.ProductRepository
	Uploader *service.Uploader
}

func NewApp(logger zerolog.Logger, products domain.ProductRepository, uploader *service.Uploader) *App {
	return &App{Logger: logger, Products: products, Uploader: uploader}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}
