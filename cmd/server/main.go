package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/racan/racan/backend-go/internal/asset"
	"github.com/racan/racan/backend-go/internal/assetfetch"
	"github.com/racan/racan/backend-go/internal/auth"
	"github.com/racan/racan/backend-go/internal/config"
	"github.com/racan/racan/backend-go/internal/db"
	"github.com/racan/racan/backend-go/internal/export"
	mw "github.com/racan/racan/backend-go/internal/middleware"
	"github.com/racan/racan/backend-go/internal/preview"
	"github.com/racan/racan/backend-go/internal/project"
	"github.com/racan/racan/backend-go/internal/render"
	"github.com/racan/racan/backend-go/internal/render/svgexport"
	"github.com/racan/racan/backend-go/internal/template"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := db.New(pool)
	if err := queries.Migrate(ctx); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	templateHandler := template.NewHandler(template.NewService(queries))
	projectHandler := project.NewHandler(project.NewService(queries))

	resolver := &assetfetch.Resolver{
		AssetDir:  cfg.AssetDir,
		ProxyBase: cfg.ProxyBase,
	}
	exportHandler := export.NewHandler(render.New(resolver), svgexport.New(resolver))

	assetHandler := asset.NewHandler(cfg.AssetDir)
	proxyHandler := asset.NewProxy()
	previewHandler := preview.NewHandler(originPatterns(cfg.AllowedOrigins))

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Public template gallery
	r.HandleFunc("/templates/public", templateHandler.ListPublic).Methods("GET")

	// Asset endpoints (public, used by the editor canvas)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")
	r.HandleFunc("/proxy/image", proxyHandler.Image).Methods("GET")

	// Export endpoints (public, stateless)
	r.HandleFunc("/export/image", exportHandler.ExportImage).Methods("POST", "OPTIONS")
	r.HandleFunc("/export/svg", exportHandler.ExportSVG).Methods("POST", "OPTIONS")
	r.HandleFunc("/export/thumbnail", exportHandler.Thumbnail).Methods("POST", "OPTIONS")

	// Live preview channel
	r.HandleFunc("/ws/preview", previewHandler.Serve)

	// Protected routes
	authed := r.NewRoute().Subrouter()
	authed.Use(authService.AuthMiddleware)

	authed.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	authed.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods("PUT")

	authed.HandleFunc("/templates", templateHandler.List).Methods("GET")
	authed.HandleFunc("/templates", templateHandler.Create).Methods("POST")
	authed.HandleFunc("/templates/{templateId}", templateHandler.Get).Methods("GET")
	authed.HandleFunc("/templates/{templateId}", templateHandler.Update).Methods("PUT")
	authed.HandleFunc("/templates/{templateId}", templateHandler.Delete).Methods("DELETE")

	authed.HandleFunc("/projects", projectHandler.List).Methods("GET")
	authed.HandleFunc("/projects", projectHandler.Save).Methods("POST")
	authed.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	authed.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// originPatterns strips schemes for the websocket origin check.
func originPatterns(allowedOrigins string) []string {
	var patterns []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
