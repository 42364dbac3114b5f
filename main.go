package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/toystacks/toy-server/config"
	"github.com/toystacks/toy-server/database"
	"github.com/toystacks/toy-server/handlers"
	"github.com/toystacks/toy-server/metrics"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// readHeaderTimeout bounds how long a client may take to send request headers.
const readHeaderTimeout = 10 * time.Second

// @title Toy Stacks API
// @version 1.0
// @description CRUD and query endpoints over the toy collection, backed by MongoDB.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Database (MongoDB implementation in database package)
	store, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// The index only speeds up name search; run it in the background and keep serving on failure.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()

	router := newRouter(cfg, store)

	srv := newServer(cfg, router)

	go func() {
		log.Printf("Toy server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("Error disconnecting MongoDB: %v", err)
	}
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func newRouter(cfg *config.Config, store handlers.ToyStore) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- CORS Middleware ---
	// Any origin may call the API.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", handlers.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{handlers.RequestIDHeader}

	router.Use(cors.New(corsConfig))
	router.Use(handlers.RequestID(), metrics.Middleware(), handlers.ErrorHandler())

	router.GET("/metrics", metrics.Handler())
	handlers.Register(router, handlers.NewToyHandler(store, cfg))

	return router
}
