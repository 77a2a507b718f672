/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (logging.RequestLogger)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend dev server
  5. Rate limit: Write routes only, per client IP (httprate)

ROUTE GROUPS:
  /api/status           Backend readiness
  /api/children/*       Child profiles
  /api/caregivers/*     Grandparent profiles and colour palette
  /api/care-periods     Period scheduling
  /api/care-days/*      History and single care day edits
  /api/summary/*        Distribution chart
  /api/scenarios/*      Demo families
  /api/reset            Clear every list (dev only)
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from Options.StaticDir.
  Falls back to index.html for client-side routing.

SECURITY NOTE:
  Single-user app bound to localhost by default. No authentication.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-kit/log"

	"github.com/bantra/gardeparents/logging"
)

// Options tune the router. Zero values disable the optional parts.
type Options struct {
	AllowedOrigins []string
	// RateLimit is the number of write requests per minute and client IP.
	RateLimit int
	StaticDir string
	Logger    log.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	writes := func(next http.Handler) http.Handler { return next }
	if opts.RateLimit > 0 {
		writes = httprate.Limit(
			opts.RateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Route("/children", func(r chi.Router) {
			r.Get("/", h.ListChildren)
			r.Get("/{id}", h.GetChild)
			r.With(writes).Post("/", h.CreateChild)
			r.With(writes).Put("/{id}", h.UpdateChild)
			r.With(writes).Delete("/{id}", h.DeleteChild)
		})

		r.Route("/caregivers", func(r chi.Router) {
			r.Get("/", h.ListCaregivers)
			r.Get("/palette", h.Palette)
			r.Get("/{id}", h.GetCaregiver)
			r.With(writes).Post("/", h.CreateCaregiver)
			r.With(writes).Put("/{id}", h.UpdateCaregiver)
			r.With(writes).Delete("/{id}", h.DeleteCaregiver)
		})

		r.With(writes).Post("/care-periods", h.CreateCarePeriod)

		r.Route("/care-days", func(r chi.Router) {
			r.Get("/", h.ListCareDays)
			r.Get("/{id}", h.GetCareDay)
			r.With(writes).Put("/{id}", h.UpdateCareDay)
			r.With(writes).Delete("/{id}", h.DeleteCareDay)
		})

		r.Route("/summary", func(r chi.Router) {
			r.Get("/", h.GetSummary)
			r.Get("/{year}/{month}", h.GetMonthSummary)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.With(writes).Post("/load", h.LoadScenario)
		})

		r.With(writes).Post("/reset", h.ResetDatabase)
	})

	r.Get("/*", staticHandler(opts.StaticDir))

	return r
}

// staticHandler serves the built frontend, or a placeholder page when it
// has not been built.
func staticHandler(dir string) http.HandlerFunc {
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			exe, _ := os.Executable()
			dir = filepath.Join(filepath.Dir(exe), "web", "dist")
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "index.html")); dir == "" || err != nil {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Garde des grands-parents</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Garde des grands-parents</h1>
<p>L'interface n'est pas encore construite. Lancez <code>cd web && npm install && npm run build</code></p>
<h2>API</h2>
<ul>
<li><a href="/api/status">/api/status</a></li>
<li><a href="/api/children">/api/children</a></li>
<li><a href="/api/caregivers">/api/caregivers</a></li>
<li><a href="/api/summary">/api/summary</a></li>
</ul>
</body>
</html>`))
		}
	}

	fileServer := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			// SPA routing: serve index.html
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}
