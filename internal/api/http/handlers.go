package apihttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"evcharge-cloud/internal/stations/application"
	stations "evcharge-cloud/internal/stations/domain"
	"evcharge-cloud/internal/stations/interfaces"
)

// ExportStationsHandler serves station list exports in csv, xlsx and pdf.
type ExportStationsHandler struct {
	service *application.Service
}

// NewExportStationsHandler constructs an export handler.
func NewExportStationsHandler(service *application.Service) *ExportStationsHandler {
	return &ExportStationsHandler{service: service}
}

// ServeHTTP handles GET /api/v1/exports/stations.{csv,xlsx,pdf}.
func (h *ExportStationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	format := strings.TrimPrefix(r.URL.Path, "/api/v1/exports/stations.")
	filter, err := parseExportFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "query stations error", http.StatusInternalServerError)
		return
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "csv":
		data, err = interfaces.BuildStationsCSV(list)
		contentType = "text/csv"
	case "xlsx":
		data, err = interfaces.BuildStationsXLSX(list)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = interfaces.BuildStationsPDF(list)
		contentType = "application/pdf"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "build export error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=stations.%s", format))
	_, _ = w.Write(data)
}

func parseExportFilter(r *http.Request) (stations.StationFilter, error) {
	var filter stations.StationFilter
	query := r.URL.Query()

	if status := query.Get("status"); status != "" {
		parsed, ok := stations.ParseStatus(status)
		if !ok {
			return filter, errors.New("invalid status filter")
		}
		filter.Status = parsed
	}
	if raw := query.Get("powerOutput"); raw != "" {
		power, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("powerOutput filter must be a number")
		}
		filter.PowerOutput = &power
	}
	filter.ConnectorType = strings.TrimSpace(query.Get("connectorType"))
	return filter, nil
}
