package server

import (
	"errors"
	"net/http"

	"github.com/playperu/cityguide/internal/app"
	"github.com/playperu/cityguide/internal/gate"
	"github.com/playperu/cityguide/internal/license"
)

type UnlockRequest struct {
	// City the code was typed for; empty means the city on screen.
	City string `json:"city,omitempty"`
	Code string `json:"code"`
}

// UnlockErrorResponse carries the rendered view alongside the error so the
// page can show the notice without a second request.
type UnlockErrorResponse struct {
	Error     string    `json:"error"`
	Retryable bool      `json:"retryable"`
	View      *app.View `json:"view,omitempty"`
}

func handleUnlock(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnlockRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		v, err := ctrl.Unlock(r.Context(), req.City, req.Code)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, v)
		case errors.Is(err, gate.ErrEmptyCode):
			writeJSON(w, http.StatusBadRequest, UnlockErrorResponse{Error: "code is required", View: &v})
		case errors.Is(err, app.ErrUnknownCity):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, gate.ErrInvalidCode):
			writeJSON(w, http.StatusUnprocessableEntity, UnlockErrorResponse{Error: "invalid code", View: &v})
		case license.IsVerificationError(err):
			writeJSON(w, http.StatusServiceUnavailable, UnlockErrorResponse{Error: err.Error(), Retryable: true, View: &v})
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func handlePurchase(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := ctrl.Purchase(r.URL.Query().Get("city"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}
