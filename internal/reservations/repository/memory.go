package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	reservationerrors "onehotel/internal/reservations/errors"
	"onehotel/pkg/db"
	"onehotel/pkg/db/memory"
	"onehotel/pkg/model"
)

type memoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
	txManager    *memory.TransactionManager
}

// NewMemoryReservationRepository keeps reservations in process memory.
// txManager must be the one shared with the room repository.
func NewMemoryReservationRepository(txManager *memory.TransactionManager) ReservationRepository {
	return &memoryReservationRepository{
		reservations: make(map[string]model.Reservation),
		txManager:    txManager,
	}
}

func (r *memoryReservationRepository) Create(_ context.Context, res *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reservations[res.ID] = *res
	return nil
}

func (r *memoryReservationRepository) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, id)
	}
	return &res, nil
}

func (r *memoryReservationRepository) Find(_ context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
	return r.collect(func(res *model.Reservation) bool {
		if filter.RoomID != "" && res.RoomID != filter.RoomID {
			return false
		}
		return filter.Range == nil || filter.Range.Contains(res.StartDate, res.EndDate)
	}), nil
}

func (r *memoryReservationRepository) FindOverlapping(_ context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
	return r.collect(func(res *model.Reservation) bool {
		return res.RoomID == roomID && res.ID != excludeID && res.Overlaps(start, end)
	}), nil
}

func (r *memoryReservationRepository) collect(match func(*model.Reservation) bool) []*model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Reservation, 0)
	for _, res := range r.reservations {
		found := res
		if match(&found) {
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *memoryReservationRepository) Update(_ context.Context, res *model.Reservation) error {
	if err := parseID(res.ID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reservations[res.ID]
	if !ok {
		return fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, res.ID)
	}
	existing.RoomID = res.RoomID
	existing.GuestInfo = res.GuestInfo
	existing.StartDate = res.StartDate
	existing.EndDate = res.EndDate
	r.reservations[res.ID] = existing
	return nil
}

func (r *memoryReservationRepository) Delete(_ context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reservations[id]; !ok {
		return fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, id)
	}
	delete(r.reservations, id)
	return nil
}

func (r *memoryReservationRepository) DeleteByRoomID(_ context.Context, roomID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, res := range r.reservations {
		if res.RoomID == roomID {
			delete(r.reservations, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memoryReservationRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
