package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"onehotel/internal/reservations/repository"
	"onehotel/internal/reservations/validator"
	roomrepository "onehotel/internal/rooms/repository"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	"onehotel/pkg/db"
	"onehotel/pkg/db/memory"
	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/events"
	"onehotel/pkg/logger"
	"onehotel/pkg/model"
)

// Today is 2024-05-01 for every test in this file.
var now = time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)

func may(d int) model.Date {
	return model.NewDate(time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC))
}

func daysFromToday(n int) model.Date {
	return model.NewDate(clock.StartOfDay(now).AddDate(0, 0, n))
}

type fixture struct {
	service   ReservationService
	repo      repository.ReservationRepository
	rooms     roomrepository.RoomRepository
	publisher *events.Recorder
	roomID    string
	otherRoom string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	tx := memory.NewTransactionManager()
	rooms := roomrepository.NewMemoryRoomRepository(tx)
	repo := repository.NewMemoryReservationRepository(tx)
	publisher := events.NewRecorder()

	f := &fixture{
		repo:      repo,
		rooms:     rooms,
		publisher: publisher,
		roomID:    "0b6f5d6e-7c1d-4d8e-9a63-3c2b8f1e0a11",
		otherRoom: "5e2c9a41-1f77-4b0e-8d2a-6a9c3e4b7d22",
	}
	for i, id := range []string{f.roomID, f.otherRoom} {
		if err := rooms.Create(context.Background(), &model.Room{ID: id, Number: i + 1, Price: 10}); err != nil {
			t.Fatalf("failed to seed room: %v", err)
		}
	}

	f.service = NewReservationService(repo, rooms,
		validator.NewReservationValidator(validator.DefaultDateRules(), log),
		publisher, clock.NewFixed(now), &config.Config{Log: log})
	return f
}

func (f *fixture) add(t *testing.T, roomID string, start, end model.Date) *model.Reservation {
	t.Helper()
	res, err := f.service.Add(context.Background(), &model.ReservationInput{
		RoomID: roomID, GuestInfo: "John Doe, with a dog", StartDate: start, EndDate: end,
	})
	if err != nil {
		t.Fatalf("Add(%s..%s) unexpected error: %v", start, end, err)
	}
	return res
}

func input(roomID string, start, end model.Date) *model.ReservationInput {
	return &model.ReservationInput{RoomID: roomID, GuestInfo: "Kate Spring", StartDate: start, EndDate: end}
}

// ────────────────────────────────────────────────
// Add
// ────────────────────────────────────────────────

func TestAdd_TomorrowSucceeds(t *testing.T) {
	f := newFixture(t)

	res := f.add(t, f.roomID, daysFromToday(1), daysFromToday(2))

	if res.ID == "" {
		t.Error("expected server-assigned id")
	}
	if !res.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, res.CreatedAt)
	}
	stored, err := f.service.GetByID(context.Background(), res.ID)
	if err != nil || stored.GuestInfo != "John Doe, with a dog" {
		t.Fatalf("reservation not stored: %v %+v", err, stored)
	}
	if types := f.publisher.Types(); len(types) != 1 || types[0] != events.ReservationCreated {
		t.Errorf("expected reservation.created, got %v", types)
	}
}

func TestAdd_DateRules(t *testing.T) {
	tests := []struct {
		name       string
		start, end model.Date
		want       apperrors.Kind
	}{
		{"starts today", daysFromToday(0), daysFromToday(1), apperrors.KindTooSoon},
		{"forty days long", daysFromToday(1), daysFromToday(40), apperrors.KindDurationTooLong},
		{"too far ahead", daysFromToday(31), daysFromToday(32), apperrors.KindTooFarAhead},
		{"reversed", daysFromToday(5), daysFromToday(3), apperrors.KindInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.Add(context.Background(), input(f.roomID, tt.start, tt.end))
			if got := apperrors.KindOf(err); got != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
			if apperrors.AsAppError(err).StatusCode() != 400 {
				t.Errorf("expected 400, got %d", apperrors.AsAppError(err).StatusCode())
			}
			if all, _ := f.service.GetAll(context.Background(), nil); len(all) != 0 {
				t.Error("nothing may be stored on failure")
			}
		})
	}
}

func TestAdd_IgnoresTimeOfDay(t *testing.T) {
	f := newFixture(t)
	start := model.NewDate(time.Date(2024, 5, 2, 23, 59, 0, 0, time.UTC))
	end := model.NewDate(time.Date(2024, 5, 3, 6, 0, 0, 0, time.UTC))

	res := f.add(t, f.roomID, start, end)
	if !res.StartDate.Equal(may(2).Time) || !res.EndDate.Equal(may(3).Time) {
		t.Errorf("expected normalized dates, got %v %v", res.StartDate, res.EndDate)
	}
}

func TestAdd_Overlap(t *testing.T) {
	f := newFixture(t)
	existing := f.add(t, f.roomID, may(10), may(13))

	_, err := f.service.Add(context.Background(), input(f.roomID, may(12), may(14)))
	if apperrors.KindOf(err) != apperrors.KindOverlappingReservation {
		t.Fatalf("expected overlap, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 409 {
		t.Errorf("expected 409, got %d", appErr.StatusCode())
	}
	if appErr.Details["conflicting_id"] != existing.ID {
		t.Errorf("expected conflicting id %s, got %v", existing.ID, appErr.Details["conflicting_id"])
	}
}

func TestAdd_TouchingStaysAllowed(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))

	f.add(t, f.roomID, may(13), may(15))
	f.add(t, f.roomID, may(8), may(10))

	all, _ := f.service.GetByRoomID(context.Background(), f.roomID, nil)
	if len(all) != 3 {
		t.Errorf("expected 3 reservations, got %d", len(all))
	}
}

func TestAdd_SameDatesOtherRoom(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))
	f.add(t, f.otherRoom, may(10), may(13))
}

func TestAdd_MissingRoom(t *testing.T) {
	f := newFixture(t)

	for _, roomID := range []string{"9d0e7a55-5b8f-4c1e-a2d3-7f6e5d4c3b2a", "not-a-uuid"} {
		_, err := f.service.Add(context.Background(), input(roomID, may(10), may(12)))
		if !apperrors.IsNotFound(err) {
			t.Errorf("room %q: expected not found, got %v", roomID, err)
		}
	}
}

func TestAdd_ExistenceCheckedBeforeDateRules(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Add(context.Background(), input("9d0e7a55-5b8f-4c1e-a2d3-7f6e5d4c3b2a", daysFromToday(0), daysFromToday(40)))
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found before date rules, got %v", err)
	}
}

func TestAdd_DateRulesCheckedBeforeOverlap(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))

	_, err := f.service.Add(context.Background(), input(f.roomID, may(11), may(20)))
	if apperrors.KindOf(err) != apperrors.KindDurationTooLong {
		t.Fatalf("expected duration error before overlap, got %v", err)
	}
}

func TestAdd_MissingFieldsFirst(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Add(context.Background(), &model.ReservationInput{RoomID: f.roomID, GuestInfo: "  ", EndDate: may(3)})
	if apperrors.KindOf(err) != apperrors.KindMissingField {
		t.Fatalf("expected missing field, got %v", err)
	}
	if apperrors.AsAppError(err).Details["field"] != "guest_info" {
		t.Errorf("expected guest_info, got %v", apperrors.AsAppError(err).Details)
	}
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_ShiftWithinOwnStay(t *testing.T) {
	f := newFixture(t)
	res := f.add(t, f.roomID, may(10), may(13))

	updated, err := f.service.Update(context.Background(), res.ID, input(f.roomID, may(11), may(14)))
	if err != nil {
		t.Fatalf("an update must not overlap with itself: %v", err)
	}
	if updated.ID != res.ID || !updated.CreatedAt.Equal(res.CreatedAt) {
		t.Error("id and created_at must be preserved")
	}
	if updated.GuestInfo != "Kate Spring" || !updated.StartDate.Equal(may(11).Time) {
		t.Errorf("unexpected update result %+v", updated)
	}
	if types := f.publisher.Types(); types[len(types)-1] != events.ReservationUpdated {
		t.Errorf("expected reservation.updated, got %v", types)
	}
}

func TestUpdate_OverlapWithAnother(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))
	second := f.add(t, f.roomID, may(20), may(22))

	_, err := f.service.Update(context.Background(), second.ID, input(f.roomID, may(12), may(14)))
	if apperrors.KindOf(err) != apperrors.KindOverlappingReservation {
		t.Fatalf("expected overlap, got %v", err)
	}

	unchanged, _ := f.service.GetByID(context.Background(), second.ID)
	if !unchanged.StartDate.Equal(may(20).Time) {
		t.Error("failed update must leave the reservation untouched")
	}
}

func TestUpdate_MoveToAnotherRoom(t *testing.T) {
	f := newFixture(t)
	res := f.add(t, f.roomID, may(10), may(13))

	updated, err := f.service.Update(context.Background(), res.ID, input(f.otherRoom, may(10), may(13)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RoomID != f.otherRoom {
		t.Errorf("expected room %s, got %s", f.otherRoom, updated.RoomID)
	}
}

func TestUpdate_NotFoundBeforeRoomCheck(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(context.Background(), "44444444-4444-4444-8444-444444444444",
		input("9d0e7a55-5b8f-4c1e-a2d3-7f6e5d4c3b2a", may(10), may(12)))
	appErr := apperrors.AsAppError(err)
	if !apperrors.IsNotFound(err) || appErr.Details["resource"] != "Reservation" {
		t.Fatalf("expected reservation not found, got %v", err)
	}
}

func TestUpdate_MissingRoom(t *testing.T) {
	f := newFixture(t)
	res := f.add(t, f.roomID, may(10), may(13))

	_, err := f.service.Update(context.Background(), res.ID, input("9d0e7a55-5b8f-4c1e-a2d3-7f6e5d4c3b2a", may(10), may(12)))
	if !apperrors.IsNotFound(err) || apperrors.AsAppError(err).Details["resource"] != "Room" {
		t.Fatalf("expected room not found, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Delete / queries
// ────────────────────────────────────────────────

func TestDelete_NotFoundLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))

	err := f.service.Delete(context.Background(), "44444444-4444-4444-8444-444444444444")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	all, _ := f.service.GetAll(context.Background(), nil)
	if len(all) != 1 {
		t.Errorf("expected 1 reservation, got %d", len(all))
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	res := f.add(t, f.roomID, may(10), may(13))

	if err := f.service.Delete(context.Background(), res.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.GetByID(context.Background(), res.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if types := f.publisher.Types(); types[len(types)-1] != events.ReservationDeleted {
		t.Errorf("expected reservation.deleted, got %v", types)
	}
}

func TestGetAll_RangeContainment(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))
	f.add(t, f.roomID, may(20), may(22))
	f.add(t, f.otherRoom, may(11), may(12))

	got, err := f.service.GetAll(context.Background(), &model.DateRange{Start: may(10).Time, End: may(13).Time})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 contained reservations, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].StartDate.Before(got[i-1].StartDate) {
			t.Error("expected results ordered by start date")
		}
	}
}

func TestGetByRoomID(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.roomID, may(10), may(13))
	f.add(t, f.otherRoom, may(10), may(13))

	got, err := f.service.GetByRoomID(context.Background(), f.roomID, nil)
	if err != nil || len(got) != 1 || got[0].RoomID != f.roomID {
		t.Fatalf("unexpected result %v %v", got, err)
	}

	_, err = f.service.GetByRoomID(context.Background(), "9d0e7a55-5b8f-4c1e-a2d3-7f6e5d4c3b2a", nil)
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not found for unknown room, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Store failures
// ────────────────────────────────────────────────

type failingReservationRepository struct {
	repository.ReservationRepository
	findOverlappingFunc func(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error)
}

func (m *failingReservationRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
	return m.findOverlappingFunc(ctx, roomID, start, end, excludeID)
}

func (m *failingReservationRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return fn(ctx)
}

func TestAdd_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	log := logger.Nop()
	repo := &failingReservationRepository{
		findOverlappingFunc: func(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	s := NewReservationService(repo, f.rooms,
		validator.NewReservationValidator(validator.DefaultDateRules(), log),
		events.NewNoopPublisher(), clock.NewFixed(now), &config.Config{Log: log})

	_, err := s.Add(context.Background(), input(f.roomID, may(10), may(12)))
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInternal || appErr.StatusCode() != 500 {
		t.Fatalf("expected internal error, got %v", err)
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error { return errors.New("broker down") }
func (failingPublisher) Close() error                                { return nil }

func TestAdd_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	log := logger.Nop()
	s := NewReservationService(f.repo, f.rooms,
		validator.NewReservationValidator(validator.DefaultDateRules(), log),
		failingPublisher{}, clock.NewFixed(now), &config.Config{Log: log})

	if _, err := s.Add(context.Background(), input(f.roomID, may(10), may(12))); err != nil {
		t.Fatalf("event delivery must not fail the request: %v", err)
	}
}
