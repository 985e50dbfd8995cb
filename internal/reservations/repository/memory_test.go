package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	reservationerrors "onehotel/internal/reservations/errors"
	"onehotel/pkg/db/memory"
	"onehotel/pkg/model"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

const (
	roomA = "0b6f5d6e-7c1d-4d8e-9a63-3c2b8f1e0a11"
	roomB = "5e2c9a41-1f77-4b0e-8d2a-6a9c3e4b7d22"
)

func seed(t *testing.T) ReservationRepository {
	t.Helper()
	repo := NewMemoryReservationRepository(memory.NewTransactionManager())
	items := []model.Reservation{
		{ID: "11111111-1111-4111-8111-111111111111", RoomID: roomA, GuestInfo: "John Doe", StartDate: day(10), EndDate: day(13)},
		{ID: "22222222-2222-4222-8222-222222222222", RoomID: roomA, GuestInfo: "Kate Spring", StartDate: day(20), EndDate: day(22)},
		{ID: "33333333-3333-4333-8333-333333333333", RoomID: roomB, GuestInfo: "Ivan Ivanov", StartDate: day(11), EndDate: day(12)},
	}
	for i := range items {
		if err := repo.Create(context.Background(), &items[i]); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return repo
}

func TestFind_Filters(t *testing.T) {
	repo := seed(t)

	tests := []struct {
		name   string
		filter model.ReservationFilter
		want   int
	}{
		{"all", model.ReservationFilter{}, 3},
		{"by room", model.ReservationFilter{RoomID: roomA}, 2},
		{"range contains", model.ReservationFilter{Range: &model.DateRange{Start: day(10), End: day(13)}}, 2},
		{"range cuts reservation", model.ReservationFilter{Range: &model.DateRange{Start: day(11), End: day(21)}}, 1},
		{"room and range", model.ReservationFilter{RoomID: roomA, Range: &model.DateRange{Start: day(1), End: day(31)}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Find(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d reservations, got %d", tt.want, len(got))
			}
		})
	}
}

func TestFindOverlapping(t *testing.T) {
	repo := seed(t)

	got, err := repo.FindOverlapping(context.Background(), roomA, day(12), day(14), "")
	if err != nil || len(got) != 1 || got[0].GuestInfo != "John Doe" {
		t.Fatalf("expected John Doe's stay, got %v %v", got, err)
	}

	got, _ = repo.FindOverlapping(context.Background(), roomA, day(13), day(15), "")
	if len(got) != 0 {
		t.Errorf("touching stays must not overlap, got %d", len(got))
	}

	got, _ = repo.FindOverlapping(context.Background(), roomA, day(12), day(14), "11111111-1111-4111-8111-111111111111")
	if len(got) != 0 {
		t.Errorf("excluded id must be skipped, got %d", len(got))
	}
}

func TestDeleteByRoomID(t *testing.T) {
	repo := seed(t)

	n, err := repo.DeleteByRoomID(context.Background(), roomA)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d %v", n, err)
	}
	left, _ := repo.Find(context.Background(), model.ReservationFilter{})
	if len(left) != 1 || left[0].RoomID != roomB {
		t.Errorf("unexpected remaining reservations %v", left)
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	repo := seed(t)

	res, err := repo.FindByID(context.Background(), "11111111-1111-4111-8111-111111111111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res.GuestInfo = "mutated"

	again, _ := repo.FindByID(context.Background(), res.ID)
	if again.GuestInfo != "John Doe" {
		t.Error("store must not share memory with callers")
	}
}

func TestInvalidAndMissingIDs(t *testing.T) {
	repo := seed(t)

	if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, reservationerrors.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if err := repo.Delete(context.Background(), "44444444-4444-4444-8444-444444444444"); !errors.Is(err, reservationerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
