package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"evcharge-cloud/internal/audit"
	"evcharge-cloud/internal/auth"
	"evcharge-cloud/internal/stations/application"
	stations "evcharge-cloud/internal/stations/domain"
)

const routePrefix = "/api/v1/stations"

// Handler provides station CRUD endpoints.
type Handler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("stations handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/stations and /api/v1/stations/{id}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == routePrefix:
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(r.URL.Path, routePrefix+"/"):
		id := strings.TrimPrefix(r.URL.Path, routePrefix+"/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "query stations error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*stations.Station{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	station, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	station, err := h.service.Create(r.Context(), input, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
	h.logAudit(r, "station.create", station.ID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	station, err := h.service.Update(r.Context(), id, input, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
	h.logAudit(r, "station.update", id)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "station deleted"})
	h.logAudit(r, "station.delete", id)
}

func parseFilter(r *http.Request) (stations.StationFilter, error) {
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

func decodeInput(w http.ResponseWriter, r *http.Request) (stations.StationInput, bool) {
	defer r.Body.Close()
	var input stations.StationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return input, false
	}
	return input, true
}

func respondError(w http.ResponseWriter, err error) {
	var vErr *stations.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  vErr.Fields,
		})
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, stations.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, stations.ErrNotFound):
		http.Error(w, "station not found", http.StatusNotFound)
	default:
		// Store failures stay generic; details go to logs, not callers.
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) logAudit(r *http.Request, action, stationID string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Action:       action,
		ResourceType: "station",
		ResourceID:   stationID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
