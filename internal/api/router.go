package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/geotrack/asset-tracker/internal/bus"
	"github.com/geotrack/asset-tracker/internal/service"
	ws "github.com/geotrack/asset-tracker/internal/websocket"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(assets *service.AssetService, fences *service.GeoFenceService, b *bus.Bus, gateway *ws.Gateway) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// CORS for the map frontend
	r.Use(corsMiddleware)

	// Handlers
	assetHandler := NewAssetHandler(assets)
	fenceHandler := NewGeoFenceHandler(fences, assets)
	statsHandler := NewStatsHandler(assets, fences, b, gateway)

	// Subscription endpoint
	r.Get("/ws", gateway.HandleWebSocket)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandler())

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", assetHandler.Create)
			r.Get("/", assetHandler.List)
			r.Get("/types", assetHandler.Types)
			r.Get("/nearby", assetHandler.Nearby)
			r.Post("/within", assetHandler.WithinBoundary)
			r.Post("/locations", assetHandler.BulkUpdateLocations)
			r.Get("/{id}", assetHandler.Get)
			r.Patch("/{id}", assetHandler.Update)
			r.Put("/{id}/location", assetHandler.UpdateLocation)
			r.Put("/{id}/status", assetHandler.UpdateStatus)
			r.Delete("/{id}", assetHandler.Delete)
		})

		r.Route("/geofences", func(r chi.Router) {
			r.Post("/", fenceHandler.Create)
			r.Get("/", fenceHandler.List)
			r.Get("/{id}", fenceHandler.Get)
			r.Get("/{id}/assets", fenceHandler.Assets)
			r.Patch("/{id}", fenceHandler.Update)
			r.Delete("/{id}", fenceHandler.Delete)
			r.Post("/{id}/toggle", fenceHandler.ToggleActive)
		})

		r.Get("/stats", statsHandler.Stats)
	})

	return r
}

// corsMiddleware adds CORS headers for frontend development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
