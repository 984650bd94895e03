package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventmanagement/docs"
	"eventmanagement/internal/delivery/http/controllers"
	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/delivery/http/middleware"
	"eventmanagement/internal/metrics"
)

// NewRouter initializes the HTTP router with all application routes and wraps it in
// request ID, logging, CORS and metrics middleware.
func NewRouter(logger *slog.Logger, eventController *controllers.EventController, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", eventController.CreateEvent)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("PUT /events/{eventID}", eventController.UpdateEvent)
	mux.HandleFunc("DELETE /events/{eventID}", eventController.DeleteEvent)
	mux.HandleFunc("POST /events/{eventID}/register", eventController.RegisterEvent)
	mux.HandleFunc("GET /events/{eventID}/pdf", eventController.GenerateEventPDF)

	// Operations
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// metrics.HTTPMiddleware reads r.Pattern, so it has to sit directly on the mux.
	var handler http.Handler = metrics.HTTPMiddleware(mux)
	handler = middleware.CORS(allowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	return middleware.RequestID(handler)
}

// healthz godoc
// @Summary Liveness probe
// @Tags operations
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /healthz [get]
func healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
