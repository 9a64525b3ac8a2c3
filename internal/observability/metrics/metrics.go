package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "evcharge_"

	resultSuccess  = "success"
	resultRejected = "rejected"
	resultError    = "error"
)

var (
	registerOnce sync.Once

	stationOps       *prometheus.CounterVec
	stationOpLatency *prometheus.HistogramVec

	validationRejections *prometheus.CounterVec

	stationsTotal prometheus.Gauge
)

// Init registers observability metrics and starts the DB-backed gauge poll.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		stationOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "station_ops_total",
				Help: "Total station repository operations by result",
			},
			[]string{"op", "result"},
		)
		stationOpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "station_op_seconds",
				Help:    "Station repository operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)
		validationRejections = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "validation_rejections_total",
				Help: "Total station validation rejections by field",
			},
			[]string{"field"},
		)
		stationsTotal = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stations_total",
				Help: "Number of persisted station records",
			},
		)

		prometheus.MustRegister(stationOps, stationOpLatency, validationRejections, stationsTotal)

		if db != nil {
			go pollStationCount(db, logger)
		}
	})
}

// ObserveStationOp records one repository operation outcome.
func ObserveStationOp(op string, result string, started time.Time) {
	if stationOps == nil {
		return
	}
	stationOps.WithLabelValues(op, result).Inc()
	stationOpLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ResultLabel maps an operation error to a result label.
func ResultLabel(err error, rejected bool) string {
	switch {
	case err == nil:
		return resultSuccess
	case rejected:
		return resultRejected
	default:
		return resultError
	}
}

// RecordValidationRejections counts violated fields.
func RecordValidationRejections(fields []string) {
	if validationRejections == nil {
		return
	}
	for _, field := range fields {
		validationRejections.WithLabelValues(field).Inc()
	}
}

func pollStationCount(db *sql.DB, logger *log.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM stations`).Scan(&count); err != nil {
			if logger != nil {
				logger.Printf("stations gauge poll error: %v", err)
			}
			continue
		}
		stationsTotal.Set(float64(count))
	}
}
