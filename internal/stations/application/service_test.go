package application

import (
	"context"
	"errors"
	"testing"

	"evcharge-cloud/internal/auth"
	stations "evcharge-cloud/internal/stations/domain"
	"evcharge-cloud/internal/stations/infrastructure/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(memory.NewStationRepository())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func testInput() stations.StationInput {
	return stations.StationInput{
		Name:          "Main St",
		Location:      &stations.LocationInput{Coordinates: []any{-73.99, 40.75}},
		Status:        "Active",
		PowerOutput:   50.0,
		ConnectorType: "CCS",
	}
}

func mustCreate(t *testing.T, service *Service, userID string) *stations.Station {
	t.Helper()
	station, err := service.Create(context.Background(), testInput(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return station
}

func TestService_CreateAssignsOwnerAndID(t *testing.T) {
	service := newTestService(t)
	station := mustCreate(t, service, "user-1")

	if station.ID == "" {
		t.Fatal("expected assigned id")
	}
	if station.CreatedBy != "user-1" {
		t.Fatalf("expected createdBy user-1, got %q", station.CreatedBy)
	}
	if station.CreatedAt.IsZero() || station.UpdatedAt.IsZero() {
		t.Fatal("expected store-assigned timestamps")
	}

	loaded, err := service.Get(context.Background(), station.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Name != "Main St" || loaded.Location.Longitude() != -73.99 {
		t.Fatalf("unexpected stored record %+v", loaded)
	}
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	service := newTestService(t)
	input := testInput()
	input.Location = &stations.LocationInput{Coordinates: []any{200.0, 45.0}}

	_, err := service.Create(context.Background(), input, "user-1")
	var vErr *stations.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	list, err := service.List(context.Background(), stations.StationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected input must not be persisted, got %d records", len(list))
	}
}

func TestService_CreateRequiresIdentity(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Create(context.Background(), testInput(), ""); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestService_GetMissing(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Get(context.Background(), "stn-missing"); !errors.Is(err, stations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ListFiltersConjunctively(t *testing.T) {
	service := newTestService(t)
	mustCreate(t, service, "user-1")

	other := testInput()
	other.Name = "Harbor"
	other.Status = string(stations.StatusMaintenance)
	other.PowerOutput = 22.0
	other.ConnectorType = "Type2"
	if _, err := service.Create(context.Background(), other, "user-1"); err != nil {
		t.Fatalf("create second: %v", err)
	}

	all, err := service.List(context.Background(), stations.StationFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 stations, got %d (%v)", len(all), err)
	}

	power := 22.0
	filtered, err := service.List(context.Background(), stations.StationFilter{
		Status:        stations.StatusMaintenance,
		PowerOutput:   &power,
		ConnectorType: "Type2",
	})
	if err != nil || len(filtered) != 1 {
		t.Fatalf("expected 1 match, got %d (%v)", len(filtered), err)
	}
	if filtered[0].Name != "Harbor" {
		t.Fatalf("unexpected match %+v", filtered[0])
	}

	power = 50.0
	none, err := service.List(context.Background(), stations.StationFilter{
		Status:      stations.StatusMaintenance,
		PowerOutput: &power,
	})
	if err != nil || len(none) != 0 {
		t.Fatalf("conjunctive filter should exclude all, got %d (%v)", len(none), err)
	}
}

func TestService_UpdateRevalidatesAndPreservesCreator(t *testing.T) {
	service := newTestService(t)
	station := mustCreate(t, service, "user-1")

	input := testInput()
	input.Name = "Main St Upgraded"
	input.PowerOutput = "120.556"
	updated, err := service.Update(context.Background(), station.ID, input, "user-1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Main St Upgraded" {
		t.Fatalf("expected new name, got %q", updated.Name)
	}
	if updated.PowerOutput != 120.56 {
		t.Fatalf("expected powerOutput rounded on update, got %v", updated.PowerOutput)
	}
	if updated.CreatedBy != "user-1" {
		t.Fatalf("createdBy must be preserved, got %q", updated.CreatedBy)
	}
	if !updated.CreatedAt.Equal(station.CreatedAt) {
		t.Fatal("createdAt must be preserved on update")
	}
}

func TestService_UpdateByNonCreator(t *testing.T) {
	// Scenario C: forbidden, record untouched.
	service := newTestService(t)
	station := mustCreate(t, service, "user-1")

	input := testInput()
	input.Name = "Hijacked"
	if _, err := service.Update(context.Background(), station.ID, input, "user-2"); !errors.Is(err, stations.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	loaded, err := service.Get(context.Background(), station.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Name != "Main St" {
		t.Fatalf("record must be unchanged after forbidden update, got %q", loaded.Name)
	}
}

func TestService_UpdateRejectsPartialPayload(t *testing.T) {
	// All fields must be resupplied on update.
	service := newTestService(t)
	station := mustCreate(t, service, "user-1")

	_, err := service.Update(context.Background(), station.ID, stations.StationInput{Name: "Only a name"}, "user-1")
	var vErr *stations.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_UpdateMissing(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Update(context.Background(), "stn-missing", testInput(), "user-1"); !errors.Is(err, stations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	service := newTestService(t)
	station := mustCreate(t, service, "user-1")

	if err := service.Delete(context.Background(), station.ID, "user-2"); !errors.Is(err, stations.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-creator, got %v", err)
	}
	if err := service.Delete(context.Background(), station.ID, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.Get(context.Background(), station.ID); !errors.Is(err, stations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestService_DeleteMissing(t *testing.T) {
	// Scenario D.
	service := newTestService(t)
	if err := service.Delete(context.Background(), "stn-missing", "user-1"); !errors.Is(err, stations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
