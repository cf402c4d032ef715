package server

import (
	"errors"
	"net/http"

	"github.com/playperu/cityguide/internal/app"
)

type CityRequest struct {
	City string `json:"city"`
}

type FilterRequest struct {
	Category string `json:"category"`
}

type SearchRequest struct {
	Term string `json:"term"`
}

type CitiesResponse struct {
	Cities []app.CityOption `json:"cities"`
}

func handleView(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.View())
	}
}

func handleCities(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CitiesResponse{Cities: ctrl.View().Cities})
	}
}

func handleSelectCity(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CityRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		v, err := ctrl.SelectCity(r.Context(), req.City)
		if err != nil {
			if errors.Is(err, app.ErrUnknownCity) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			// Entitlement lookup failed; the view shows the city as locked.
			writeJSON(w, http.StatusServiceUnavailable, v)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleFilter(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FilterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, ctrl.ToggleFilter(req.Category))
	}
}

func handleSearch(ctrl *app.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, ctrl.SetSearch(req.Term))
	}
}
