package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/legal-assistant-api/internal/handlers"
	"github.com/BerylCAtieno/legal-assistant-api/internal/middleware"
	"github.com/BerylCAtieno/legal-assistant-api/internal/services"
	"github.com/BerylCAtieno/legal-assistant-api/internal/storage"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

func NewRouter(service services.LegalService, store storage.Storage, maxFileSize int64, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	h := handlers.NewLegalHandler(service, store, maxFileSize, logger)

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	r.HandleFunc("/predict-outcome", h.PredictOutcome).Methods(http.MethodPost)
	r.HandleFunc("/generate-timeline", h.GenerateTimeline).Methods(http.MethodPost)
	r.HandleFunc("/generate-arguments", h.GenerateArguments).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze-document", h.AnalyzeDocument).Methods(http.MethodPost)
	api.HandleFunc("/audit/completions", h.RecentCompletions).Methods(http.MethodGet)

	return middleware.CORS()(r)
}
