package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"onehotel/internal/rooms/repository"
	"onehotel/internal/rooms/validator"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	"onehotel/pkg/db"
	"onehotel/pkg/db/memory"
	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/events"
	"onehotel/pkg/logger"
	"onehotel/pkg/model"
)

// ────────────────────────────────────────────────
// Test doubles
// ────────────────────────────────────────────────

type mockCleaner struct {
	deleteByRoomIDFunc func(ctx context.Context, roomID string) (int64, error)
	calls              []string
}

func (m *mockCleaner) DeleteByRoomID(ctx context.Context, roomID string) (int64, error) {
	m.calls = append(m.calls, roomID)
	if m.deleteByRoomIDFunc != nil {
		return m.deleteByRoomIDFunc(ctx, roomID)
	}
	return 0, nil
}

type failingRoomRepository struct {
	repository.RoomRepository
	findAllFunc func(ctx context.Context) ([]*model.Room, error)
}

func (m *failingRoomRepository) FindAll(ctx context.Context) ([]*model.Room, error) {
	return m.findAllFunc(ctx)
}

func (m *failingRoomRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return fn(ctx)
}

type fixture struct {
	service   RoomService
	repo      repository.RoomRepository
	cleaner   *mockCleaner
	publisher *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	cfg := &config.Config{Log: log}
	repo := repository.NewMemoryRoomRepository(memory.NewTransactionManager())
	cleaner := &mockCleaner{}
	publisher := events.NewRecorder()
	clk := clock.NewFixed(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	return &fixture{
		service:   NewRoomService(repo, validator.NewRoomValidator(log), cleaner, publisher, clk, cfg),
		repo:      repo,
		cleaner:   cleaner,
		publisher: publisher,
	}
}

func mustAdd(t *testing.T, s RoomService, number int) *model.Room {
	t.Helper()
	room, err := s.Add(context.Background(), &model.RoomInput{Number: number, Price: 10.55})
	if err != nil {
		t.Fatalf("Add(%d) unexpected error: %v", number, err)
	}
	return room
}

// ────────────────────────────────────────────────
// Add
// ────────────────────────────────────────────────

func TestAdd_AssignsIDAndCreatedAt(t *testing.T) {
	f := newFixture(t)

	room, err := f.service.Add(context.Background(), &model.RoomInput{
		Number:      1,
		Price:       10.55,
		Description: "  Spacious mountain view room  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.ID == "" {
		t.Error("expected server-assigned id")
	}
	if !room.CreatedAt.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("expected created_at from clock, got %v", room.CreatedAt)
	}
	if room.Description != "Spacious mountain view room" {
		t.Errorf("expected trimmed description, got %q", room.Description)
	}

	stored, err := f.repo.FindByID(context.Background(), room.ID)
	if err != nil || stored.Number != 1 {
		t.Fatalf("room not persisted: %v %+v", err, stored)
	}
	if types := f.publisher.Types(); len(types) != 1 || types[0] != events.RoomCreated {
		t.Errorf("expected room.created event, got %v", types)
	}
}

func TestAdd_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	mustAdd(t, f.service, 7)

	_, err := f.service.Add(context.Background(), &model.RoomInput{Number: 7, Price: 1})
	if apperrors.KindOf(err) != apperrors.KindDuplicateRoomNumber {
		t.Fatalf("expected duplicate room number, got %v", err)
	}
	if apperrors.AsAppError(err).StatusCode() != 409 {
		t.Errorf("expected 409, got %d", apperrors.AsAppError(err).StatusCode())
	}
}

func TestAdd_InvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input *model.RoomInput
	}{
		{"nil body", nil},
		{"zero number", &model.RoomInput{Number: 0, Price: 1}},
		{"price too high", &model.RoomInput{Number: 1, Price: 10000}},
		{"negative price", &model.RoomInput{Number: 1, Price: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Add(context.Background(), tt.input)
			if !apperrors.IsClientError(err) {
				t.Fatalf("expected client error, got %v", err)
			}
		})
	}
	if len(f.publisher.Events()) != 0 {
		t.Error("no events expected for rejected input")
	}
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_KeepsOwnNumber(t *testing.T) {
	f := newFixture(t)
	room := mustAdd(t, f.service, 3)

	updated, err := f.service.Update(context.Background(), room.ID, &model.RoomInput{Number: 3, Price: 99.99, Description: "Renovated"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Price != 99.99 || updated.Description != "Renovated" {
		t.Errorf("unexpected room %+v", updated)
	}
	if !updated.CreatedAt.Equal(room.CreatedAt) || updated.ID != room.ID {
		t.Error("id and created_at must be preserved")
	}
}

func TestUpdate_NumberTakenByAnotherRoom(t *testing.T) {
	f := newFixture(t)
	mustAdd(t, f.service, 1)
	second := mustAdd(t, f.service, 2)

	_, err := f.service.Update(context.Background(), second.ID, &model.RoomInput{Number: 1, Price: 1})
	if apperrors.KindOf(err) != apperrors.KindDuplicateRoomNumber {
		t.Fatalf("expected duplicate room number, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(context.Background(), "6f1c3bde-93a4-4c36-8b7e-1f5b1c7e8a01", &model.RoomInput{Number: 1, Price: 1})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Delete / Get
// ────────────────────────────────────────────────

func TestDelete_CascadesToReservations(t *testing.T) {
	f := newFixture(t)
	room := mustAdd(t, f.service, 5)

	if err := f.service.Delete(context.Background(), room.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.cleaner.calls) != 1 || f.cleaner.calls[0] != room.ID {
		t.Errorf("expected reservations of %s to be removed, got %v", room.ID, f.cleaner.calls)
	}
	if _, err := f.service.GetByID(context.Background(), room.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected room to be gone, got %v", err)
	}
}

func TestDelete_CleanerFailureKeepsRoom(t *testing.T) {
	f := newFixture(t)
	room := mustAdd(t, f.service, 5)
	f.cleaner.deleteByRoomIDFunc = func(ctx context.Context, roomID string) (int64, error) {
		return 0, errors.New("connection reset")
	}

	err := f.service.Delete(context.Background(), room.ID)
	if apperrors.AsAppError(err).Code != apperrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if _, err := f.service.GetByID(context.Background(), room.ID); err != nil {
		t.Errorf("room should remain, got %v", err)
	}
}

func TestDelete_NotFoundSkipsCleaner(t *testing.T) {
	f := newFixture(t)

	err := f.service.Delete(context.Background(), "6f1c3bde-93a4-4c36-8b7e-1f5b1c7e8a01")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.cleaner.calls) != 0 {
		t.Error("cleaner must not run for a missing room")
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetByID(context.Background(), "not-a-uuid")
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestGetAll_SortedByNumber(t *testing.T) {
	f := newFixture(t)
	mustAdd(t, f.service, 12)
	mustAdd(t, f.service, 2)
	mustAdd(t, f.service, 7)

	rooms, err := f.service.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 3 || rooms[0].Number != 2 || rooms[2].Number != 12 {
		t.Errorf("unexpected order: %d %d %d", rooms[0].Number, rooms[1].Number, rooms[2].Number)
	}
}

func TestGetAll_StoreFailure(t *testing.T) {
	log := logger.Nop()
	repo := &failingRoomRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Room, error) {
			return nil, errors.New("server selection timeout")
		},
	}
	s := NewRoomService(repo, validator.NewRoomValidator(log), &mockCleaner{}, events.NewNoopPublisher(),
		clock.NewFixed(time.Now()), &config.Config{Log: log})

	_, err := s.GetAll(context.Background())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInternal || appErr.Message != "Failed to retrieve rooms" {
		t.Fatalf("expected internal error, got %v", err)
	}
}
