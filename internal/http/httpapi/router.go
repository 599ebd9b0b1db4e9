package httpapi

import (
	stdhttp "net/http"

	"server/internal/http/handlers"
	"server/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter assembles the HTTP surface: the JSON API plus the static
// submission page served from publicDir.
func NewRouter(app *handlers.App, logger zerolog.Logger, allowedOrigins []string, publicDir, storageDir string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(chimiddleware.Recoverer)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api/images", func(r chi.Router) {
		r.Post("/upload", app.UploadProduct)
		r.Get("/{productName}", app.GetProduct)
	})

	// Objects written by the filesystem store are reachable under /static.
	if storageDir != "" {
		r.Handle("/static/*", stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(storageDir))))
	}

	if publicDir != "" {
		fileServer := stdhttp.FileServer(stdhttp.Dir(publicDir))
		r.Handle("/*", fileServer)
	}

	return r
}
