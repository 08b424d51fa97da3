package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/omerson-cruz/vue-share-backend/auth"
	"github.com/omerson-cruz/vue-share-backend/background"
	"github.com/omerson-cruz/vue-share-backend/config"
	"github.com/omerson-cruz/vue-share-backend/db"
	"github.com/omerson-cruz/vue-share-backend/feed"
	"github.com/omerson-cruz/vue-share-backend/live"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// newRouter assembles the HTTP surface. The request timeout is applied per
// group rather than globally: /api/events is a long-lived SSE stream and a
// router-wide timeout would cancel its request context after 60 seconds no
// matter how active the stream is.
func newRouter(authHandlers *auth.Handlers, feedHandler *feed.Handler, authService *auth.AuthService, broadcaster *live.Broadcaster) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/signup", authHandlers.HandleSignup())
		r.Post("/signin", authHandlers.HandleSignin())
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/events", live.HandleEvents(broadcaster))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Mount("/", feedHandler.Routes(auth.Middleware(authService)))
		})
	})
	return r
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pgStore := store.NewPGStore(pool)
	broadcaster := live.NewBroadcaster()
	feedService := feed.NewService(pgStore, broadcaster)
	authService := auth.NewAuthService(pgStore, *cfg.Auth)

	authHandlers := auth.NewHandlers(authService)
	feedHandler := feed.NewHandler(feedService)

	stopAudit := make(chan struct{})
	background.StartLikesAudit(pool, cfg.Audit, stopAudit)

	r := newRouter(authHandlers, feedHandler, authService, broadcaster)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the SSE endpoint holds its response open
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on port %s", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("server error: %v", err)
	case sig := <-shutdown:
		log.Printf("received %v, shutting down", sig)

		close(stopAudit)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("forced close failed: %v", err)
			}
		}
	}

	log.Println("server stopped")
}
