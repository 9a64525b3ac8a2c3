package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "evcharge-cloud/internal/api/http"
	"evcharge-cloud/internal/audit"
	"evcharge-cloud/internal/auth"
	"evcharge-cloud/internal/config"
	"evcharge-cloud/internal/observability/metrics"
	"evcharge-cloud/internal/stations/application"
	stationsrepo "evcharge-cloud/internal/stations/infrastructure/postgres"
	stationhttp "evcharge-cloud/internal/stations/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	stationRepo := stationsrepo.NewStationRepository(db)
	stationService, err := application.NewService(stationRepo)
	if err != nil {
		logger.Fatalf("station service error: %v", err)
	}
	stationHandler, err := stationhttp.NewHandler(stationService, auditRepo)
	if err != nil {
		logger.Fatalf("station handler error: %v", err)
	}
	exportHandler := apihttp.NewExportStationsHandler(stationService)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/stations", stationHandler)
	mux.Handle("/api/v1/stations/", stationHandler)
	mux.Handle("/api/v1/exports/stations.csv", exportHandler)
	mux.Handle("/api/v1/exports/stations.xlsx", exportHandler)
	mux.Handle("/api/v1/exports/stations.pdf", exportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
