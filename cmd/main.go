package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	catalogapi "github.com/iziplay/catalog-api"
	routing "github.com/iziplay/catalog-api/pkg/api"
	"github.com/iziplay/catalog-api/pkg/database"
	"github.com/iziplay/catalog-api/pkg/library"
	"github.com/iziplay/catalog-api/pkg/seed"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"gorm.io/plugin/opentelemetry/tracing"
)

func getLogLevelFromEnv() slog.Level {
	levelStr := os.Getenv("LOG_LEVEL")

	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: getLogLevelFromEnv()})))

	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		panic(err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName("catalog-api"),
			),
		),
	)
	defer tp.Shutdown(context.Background())

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	store, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		slog.Error("Database unavailable", "error", err)
		os.Exit(1)
	}
	if err := store.DB().Use(tracing.NewPlugin()); err != nil {
		slog.Error("Failed to enable database tracing", "error", err)
	}

	var fetcher library.Fetcher = store
	if fallback, _ := strconv.ParseBool(os.Getenv("CATALOG_DEMO_FALLBACK")); fallback {
		slog.Info("Demo books will be served when the database fails")
		fetcher = library.Fallback(store, seed.Demo())
	}

	secret := os.Getenv("CATALOG_JWT_SECRET")
	if secret == "" {
		slog.Warn("CATALOG_JWT_SECRET is not set, admin routes are not protected")
	}

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Server"},
		AllowCredentials: false,
	}))

	addr := ":80"
	if port, hasPort := os.LookupEnv("API_PORT"); hasPort {
		addr = ":" + port
	}

	host := "http://localhost"
	if hostEnv, hasHost := os.LookupEnv("API_HOST"); hasHost {
		host = hostEnv
	} else {
		host += addr
	}

	config := huma.DefaultConfig("Catalog API", "1.0.0")
	config.OpenAPI.Info.Description = catalogapi.Readme
	config.OpenAPI.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	config.DocsPath = "/"
	config.Servers = []*huma.Server{
		{URL: host},
	}
	api := humachi.New(router, config)

	progress := &seed.Progress{}
	routing.Setup(api, routing.Services{
		Library:   library.New(fetcher),
		Books:     store,
		Favorites: store,
		Stats:     store,
		Readiness: store,
		Import:    progress,
		JWTSecret: secret,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: otelhttp.NewHandler(router, "api"),
	}

	go func() {
		slog.Info("Starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	go store.ComputeAndCacheStats(false)

	if path, ok := os.LookupEnv("CATALOG_SEED_FILE"); ok && path != "" {
		go func() {
			if _, err := seed.Import(ctx, path, store, progress); err != nil {
				slog.Error("Seed import failed", "error", err)
				return
			}
			store.ComputeAndCacheStats(true)
		}()
	}

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
