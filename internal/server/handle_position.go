package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/playperu/cityguide/internal/app"
	"github.com/playperu/cityguide/internal/guide"
)

type PositionRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func handlePosition(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PositionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := ctrl.ReportPosition(guide.Position{Lat: req.Lat, Lon: req.Lon}); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ctrl.View())
	}
}

func handlePositionDenied(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl.ReportDenied()
		writeJSON(w, http.StatusOK, ctrl.View())
	}
}

// handlePositionRetry starts a new location request and answers at once;
// the outcome reaches the page as a pushed view.
func handlePositionRetry(ctrl *app.Controller, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := ctrl.RetryLocation(context.WithoutCancel(r.Context())); err != nil {
				logger.Debug("location retry failed", "error", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, ctrl.View())
	}
}
