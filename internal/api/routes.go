package api

import (
	"github.com/gorilla/mux"
)

func SetupRoutes(handler *IngestionHandler) *mux.Router {
	r := mux.NewRouter()

	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.HandleFunc("/healthz", Health).Methods("GET")

	r.HandleFunc("/api/v1/ingestions", handler.StartIngestion).Methods("POST")
	r.HandleFunc("/api/v1/ingestions", handler.ListIngestions).Methods("GET")
	r.HandleFunc("/api/v1/ingestions/{runID}", handler.GetIngestion).Methods("GET")

	return r
}
