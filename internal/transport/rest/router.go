package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"qualiobra/internal/service"
	"qualiobra/internal/transport/rest/handler"
	"qualiobra/internal/transport/rest/middleware"
	"qualiobra/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	QuestionnaireService *service.QuestionnaireService
	DiagnosticService    *service.DiagnosticService
	WSHub                *ws.Hub
	AllowedOrigins       string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService)
	diagnosticHandler := handler.NewDiagnosticHandler(c.DiagnosticService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/diagnostic", wsHandler.DiagnosticWS).Methods("GET")

	// User routes (require bearer token)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/diagnostic/items", questionnaireHandler.Items).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions", diagnosticHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions", diagnosticHandler.History).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions/{id}", diagnosticHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions/{id}/answers/{itemId}/score", diagnosticHandler.RecordScore).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions/{id}/answers/{itemId}/note", diagnosticHandler.RecordNote).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions/{id}/conformity", diagnosticHandler.Conformity).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions/{id}/commit", diagnosticHandler.Commit).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/diagnostic/sessions/{id}/report", diagnosticHandler.Report).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
