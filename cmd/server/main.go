package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qualiobra/internal/app"
	"qualiobra/internal/cache"
	"qualiobra/internal/config"
	"qualiobra/internal/diagnostic"
	"qualiobra/internal/service"
	"qualiobra/internal/transport/rest"
	"qualiobra/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	order, err := diagnostic.ParseGroupOrder(cfg.GroupOrder)
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()
	log.Printf("Store backend: %s", cfg.StoreBackend)

	if err := stores.OpenRedis(ctx, cfg.RedisAddr); err != nil {
		log.Fatal(err)
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize caches
	sessionCache := cache.NewSessionCache(stores.Redis, cfg.SessionTTL)
	itemCache := cache.NewItemCache(stores.Redis, cfg.ItemCacheTTL)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer)
	questionnaireSvc := service.NewQuestionnaireService(stores.ItemRepo, itemCache, order)
	diagnosticSvc := service.NewDiagnosticService(questionnaireSvc, stores.AnswerRepo, sessionCache)

	if cfg.ExportEnabled() {
		exporter, err := service.NewS3Exporter(cfg.AWSRegion, cfg.ExportBucket)
		if err != nil {
			log.Fatal(err)
		}
		diagnosticSvc.SetExporter(exporter)
		log.Printf("Reports exported to s3://%s", cfg.ExportBucket)
	}

	// Inject broadcaster (wsHub implements service.Broadcaster)
	diagnosticSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AuthService:          authSvc,
		QuestionnaireService: questionnaireSvc,
		DiagnosticService:    diagnosticSvc,
		WSHub:                wsHub,
		AllowedOrigins:       cfg.CORSAllowedOrigins,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (group order %s)", cfg.Port, order)
		log.Println("Endpoints:")
		log.Println("  GET  /v1/diagnostic/items?level=")
		log.Println("  POST/GET /v1/diagnostic/sessions")
		log.Println("  GET  /v1/diagnostic/sessions/{id}")
		log.Println("  PUT  /v1/diagnostic/sessions/{id}/answers/{itemId}/score|note")
		log.Println("  GET  /v1/diagnostic/sessions/{id}/conformity")
		log.Println("  POST /v1/diagnostic/sessions/{id}/commit")
		log.Println("  GET  /v1/diagnostic/sessions/{id}/report")
		log.Println("  WS   /v1/ws/diagnostic")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
