package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/cityguide/internal/app"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each dependency to its status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "City Guide API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("UI events and rendered views of the city travel guide.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/view
	getView, _ := r.NewOperationContext(http.MethodGet, "/api/view")
	getView.SetSummary("Current view")
	getView.SetDescription("Returns the rendered view: places ordered by distance, status and notices.")
	getView.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getView)

	// GET /api/cities
	getCities, _ := r.NewOperationContext(http.MethodGet, "/api/cities")
	getCities.SetSummary("List cities")
	getCities.AddRespStructure(CitiesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCities)

	// POST /api/city
	postCity, _ := r.NewOperationContext(http.MethodPost, "/api/city")
	postCity.SetSummary("Select city")
	postCity.SetDescription("Shows the city if it is the demo city or unlocked, otherwise the purchase prompt.")
	postCity.AddReqStructure(CityRequest{})
	postCity.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	postCity.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postCity.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postCity)

	// POST /api/filter
	postFilter, _ := r.NewOperationContext(http.MethodPost, "/api/filter")
	postFilter.SetSummary("Toggle category filter")
	postFilter.SetDescription("Selecting the active category again clears the filter.")
	postFilter.AddReqStructure(FilterRequest{})
	postFilter.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postFilter)

	// POST /api/search
	postSearch, _ := r.NewOperationContext(http.MethodPost, "/api/search")
	postSearch.SetSummary("Search places")
	postSearch.AddReqStructure(SearchRequest{})
	postSearch.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postSearch)

	// POST /api/unlock
	postUnlock, _ := r.NewOperationContext(http.MethodPost, "/api/unlock")
	postUnlock.SetSummary("Unlock city")
	postUnlock.SetDescription("Verifies an access code for the city it was entered for.")
	postUnlock.AddReqStructure(UnlockRequest{})
	postUnlock.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	postUnlock.AddRespStructure(UnlockErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postUnlock.AddRespStructure(UnlockErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postUnlock.AddRespStructure(UnlockErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postUnlock)

	// GET /api/purchase
	getPurchase, _ := r.NewOperationContext(http.MethodGet, "/api/purchase")
	getPurchase.SetSummary("Buy city")
	getPurchase.SetDescription("Redirects to the purchase page of ?city= (default: the current city).")
	getPurchase.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusFound))
	getPurchase.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPurchase)

	// POST /api/position
	postPosition, _ := r.NewOperationContext(http.MethodPost, "/api/position")
	postPosition.SetSummary("Report position")
	postPosition.AddReqStructure(PositionRequest{})
	postPosition.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	postPosition.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postPosition)

	// POST /api/position/denied
	postDenied, _ := r.NewOperationContext(http.MethodPost, "/api/position/denied")
	postDenied.SetSummary("Report geolocation failure")
	postDenied.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postDenied)

	// POST /api/position/retry
	postRetry, _ := r.NewOperationContext(http.MethodPost, "/api/position/retry")
	postRetry.SetSummary("Retry geolocation")
	postRetry.AddRespStructure(app.View{}, openapi.WithHTTPStatus(http.StatusAccepted))
	_ = r.AddOperation(postRetry)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE view stream")
	getEvents.SetDescription("Server-Sent Events stream of rendered views.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws")
	getWS.SetSummary("WebSocket event channel")
	getWS.SetDescription("Upgrades to a WebSocket that accepts UI events and pushes rendered views.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
