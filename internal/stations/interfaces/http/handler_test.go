package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"evcharge-cloud/internal/auth"
	"evcharge-cloud/internal/stations/application"
	stations "evcharge-cloud/internal/stations/domain"
	"evcharge-cloud/internal/stations/infrastructure/memory"
)

func newTestHandler(t *testing.T) (*Handler, *application.Service) {
	t.Helper()
	service, err := application.NewService(memory.NewStationRepository())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, service
}

func doJSON(handler http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), userID, ""))
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

const validBody = `{
	"name": "Main St",
	"location": {"type": "Point", "coordinates": [-73.99, 40.75]},
	"status": "Active",
	"powerOutput": 50,
	"connectorType": "CCS"
}`

func TestHandler_CreateAndGet(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doJSON(handler, http.MethodPost, "/api/v1/stations", validBody, "user-1")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created stations.Station
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.CreatedBy != "user-1" {
		t.Fatalf("unexpected created record %+v", created)
	}
	if created.Location.Type != stations.GeometryPoint {
		t.Fatalf("expected point geometry, got %q", created.Location.Type)
	}

	resp = doJSON(handler, http.MethodGet, "/api/v1/stations/"+created.ID, "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestHandler_CreateScalarLocationStringNumbers(t *testing.T) {
	// Scenario B over the wire.
	handler, _ := newTestHandler(t)
	body := `{
		"name": "Main St",
		"location": {"longitude": "-73.99", "latitude": "40.75"},
		"status": "Active",
		"powerOutput": "50",
		"connectorType": "CCS"
	}`

	resp := doJSON(handler, http.MethodPost, "/api/v1/stations", body, "user-1")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created stations.Station
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Location.Longitude() != -73.99 || created.Location.Latitude() != 40.75 {
		t.Fatalf("unexpected coordinates %v", created.Location.Coordinates)
	}
	if created.PowerOutput != 50 {
		t.Fatalf("expected powerOutput 50, got %v", created.PowerOutput)
	}
}

func TestHandler_CreateValidationFailure(t *testing.T) {
	// Scenario A: longitude out of range.
	handler, _ := newTestHandler(t)
	body := `{
		"name": "Main St",
		"location": {"coordinates": [200, 45]},
		"status": "Active",
		"powerOutput": 50,
		"connectorType": "CCS"
	}`

	resp := doJSON(handler, http.MethodPost, "/api/v1/stations", body, "user-1")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var payload struct {
		Message string                `json:"message"`
		Errors  []stations.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Message != "Validation failed" || len(payload.Errors) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Errors[0].Field != "location.longitude" {
		t.Fatalf("expected longitude violation, got %+v", payload.Errors[0])
	}
}

func TestHandler_CreateWithoutIdentity(t *testing.T) {
	handler, _ := newTestHandler(t)
	resp := doJSON(handler, http.MethodPost, "/api/v1/stations", validBody, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestHandler_CreateInvalidJSON(t *testing.T) {
	handler, _ := newTestHandler(t)
	resp := doJSON(handler, http.MethodPost, "/api/v1/stations", "{not json", "user-1")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandler_ListWithFilters(t *testing.T) {
	handler, service := newTestHandler(t)
	seed := stations.StationInput{
		Name:          "Harbor",
		Location:      &stations.LocationInput{Coordinates: []any{10.0, 20.0}},
		Status:        "Maintenance",
		PowerOutput:   22.0,
		ConnectorType: "Type2",
	}
	if _, err := service.Create(context.Background(), seed, "user-1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(handler, http.MethodGet, "/api/v1/stations?status=Maintenance&powerOutput=22&connectorType=Type2", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []stations.Station
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Harbor" {
		t.Fatalf("unexpected list %+v", list)
	}

	resp = doJSON(handler, http.MethodGet, "/api/v1/stations?status=Nonsense", "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status filter, got %d", resp.Code)
	}
}

func TestHandler_GetMissing(t *testing.T) {
	handler, _ := newTestHandler(t)
	resp := doJSON(handler, http.MethodGet, "/api/v1/stations/stn-missing", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandler_UpdateByNonCreator(t *testing.T) {
	// Scenario C.
	handler, service := newTestHandler(t)
	created, err := service.Create(context.Background(), stations.StationInput{
		Name:          "Main St",
		Location:      &stations.LocationInput{Coordinates: []any{-73.99, 40.75}},
		Status:        "Active",
		PowerOutput:   50.0,
		ConnectorType: "CCS",
	}, "user-1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(handler, http.MethodPut, "/api/v1/stations/"+created.ID, validBody, "user-2")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	unchanged, err := service.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if unchanged.UpdatedAt != created.UpdatedAt {
		t.Fatal("record must be untouched after forbidden update")
	}
}

func TestHandler_UpdateSucceeds(t *testing.T) {
	handler, service := newTestHandler(t)
	created, err := service.Create(context.Background(), stations.StationInput{
		Name:          "Main St",
		Location:      &stations.LocationInput{Coordinates: []any{-73.99, 40.75}},
		Status:        "Active",
		PowerOutput:   50.0,
		ConnectorType: "CCS",
	}, "user-1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := strings.Replace(validBody, "Main St", "Main St Upgraded", 1)
	resp := doJSON(handler, http.MethodPut, "/api/v1/stations/"+created.ID, body, "user-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var updated stations.Station
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Name != "Main St Upgraded" || updated.CreatedBy != "user-1" {
		t.Fatalf("unexpected updated record %+v", updated)
	}
}

func TestHandler_DeleteMissing(t *testing.T) {
	// Scenario D.
	handler, _ := newTestHandler(t)
	resp := doJSON(handler, http.MethodDelete, "/api/v1/stations/stn-missing", "", "user-1")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandler_DeleteLifecycle(t *testing.T) {
	handler, service := newTestHandler(t)
	created, err := service.Create(context.Background(), stations.StationInput{
		Name:          "Main St",
		Location:      &stations.LocationInput{Coordinates: []any{-73.99, 40.75}},
		Status:        "Active",
		PowerOutput:   50.0,
		ConnectorType: "CCS",
	}, "user-1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(handler, http.MethodDelete, "/api/v1/stations/"+created.ID, "", "user-2")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator, got %d", resp.Code)
	}

	resp = doJSON(handler, http.MethodDelete, "/api/v1/stations/"+created.ID, "", "user-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = doJSON(handler, http.MethodGet, "/api/v1/stations/"+created.ID, "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
