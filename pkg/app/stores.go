package app

import (
	"fmt"

	reservationrepo "onehotel/internal/reservations/repository"
	roomrepo "onehotel/internal/rooms/repository"
	"onehotel/pkg/config"
	"onehotel/pkg/db/memory"
)

// Stores bundles the repositories backing one store driver.
type Stores struct {
	Rooms        roomrepo.RoomRepository
	Reservations reservationrepo.ReservationRepository
}

// NewStores builds the repositories for cfg.StoreDriver. The matching
// connection must already be open on cfg.Client.
func NewStores(cfg *config.Config) (Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return Stores{
			Rooms:        roomrepo.NewMongoRoomRepository(cfg),
			Reservations: reservationrepo.NewMongoReservationRepository(cfg),
		}, nil
	case config.StorePostgres:
		return Stores{
			Rooms:        roomrepo.NewPostgresRoomRepository(cfg),
			Reservations: reservationrepo.NewPostgresReservationRepository(cfg),
		}, nil
	case config.StoreMemory:
		return NewMemoryStores(), nil
	}
	return Stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewMemoryStores returns process-local repositories sharing one
// transaction manager.
func NewMemoryStores() Stores {
	tx := memory.NewTransactionManager()
	return Stores{
		Rooms:        roomrepo.NewMemoryRoomRepository(tx),
		Reservations: reservationrepo.NewMemoryReservationRepository(tx),
	}
}
