package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	roomerrors "onehotel/internal/rooms/errors"
	"onehotel/pkg/db"
	"onehotel/pkg/db/memory"
	"onehotel/pkg/model"
)

type memoryRoomRepository struct {
	mu        sync.RWMutex
	rooms     map[string]model.Room
	txManager *memory.TransactionManager
}

// NewMemoryRoomRepository keeps rooms in process memory. txManager must be
// shared with every other repository taking part in the same transactions.
func NewMemoryRoomRepository(txManager *memory.TransactionManager) RoomRepository {
	return &memoryRoomRepository{
		rooms:     make(map[string]model.Room),
		txManager: txManager,
	}
}

func (r *memoryRoomRepository) Create(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rooms {
		if existing.Number == room.Number {
			return fmt.Errorf("%w: %d", roomerrors.ErrDuplicateNumber, room.Number)
		}
	}
	r.rooms[room.ID] = *room
	return nil
}

func (r *memoryRoomRepository) FindByID(_ context.Context, id string) (*model.Room, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", roomerrors.ErrNotFound, id)
	}
	return &room, nil
}

func (r *memoryRoomRepository) FindByNumber(_ context.Context, number int) (*model.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.Number == number {
			found := room
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: number %d", roomerrors.ErrNotFound, number)
}

func (r *memoryRoomRepository) FindAll(_ context.Context) ([]*model.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*model.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		found := room
		rooms = append(rooms, &found)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
	return rooms, nil
}

func (r *memoryRoomRepository) Update(_ context.Context, room *model.Room) error {
	if err := parseID(room.ID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[room.ID]
	if !ok {
		return fmt.Errorf("%w: %s", roomerrors.ErrNotFound, room.ID)
	}
	for id, other := range r.rooms {
		if id != room.ID && other.Number == room.Number {
			return fmt.Errorf("%w: %d", roomerrors.ErrDuplicateNumber, room.Number)
		}
	}

	existing.Number = room.Number
	existing.Price = room.Price
	existing.Description = room.Description
	r.rooms[room.ID] = existing
	return nil
}

func (r *memoryRoomRepository) Delete(_ context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return fmt.Errorf("%w: %s", roomerrors.ErrNotFound, id)
	}
	delete(r.rooms, id)
	return nil
}

func (r *memoryRoomRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
