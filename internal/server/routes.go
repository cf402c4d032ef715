package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/cityguide/internal/app"
)

func addRoutes(r chi.Router, logger *slog.Logger, ctrl *app.Controller, broker *Broker, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("City Guide API", "/openapi.json", "/docs"))
	r.Get("/ws", handleWS(ctrl, broker, logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", handleView(ctrl))
		r.Get("/cities", handleCities(ctrl))
		r.Post("/city", handleSelectCity(ctrl))
		r.Post("/filter", handleFilter(ctrl))
		r.Post("/search", handleSearch(ctrl))
		r.Post("/unlock", handleUnlock(ctrl))
		r.Get("/purchase", handlePurchase(ctrl))
		r.Post("/position", handlePosition(ctrl))
		r.Post("/position/denied", handlePositionDenied(ctrl))
		r.Post("/position/retry", handlePositionRetry(ctrl, logger))
		r.Get("/events", handleEvents(ctrl, broker))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving page", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
