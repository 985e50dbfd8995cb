package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	reservationrepo "onehotel/internal/reservations/repository"
	roomerrors "onehotel/internal/rooms/errors"
	roomrepo "onehotel/internal/rooms/repository"
	"onehotel/pkg/clock"
	"onehotel/pkg/logger"
	"onehotel/pkg/model"
)

type stay struct {
	GuestInfo   string
	StartOffset int
	Nights      int
}

type roomSeed struct {
	Room  model.RoomInput
	Stays []stay
}

// Stay offsets are days after today so seeded data always sits inside the
// booking window.
var demoData = []roomSeed{
	{
		Room: model.RoomInput{Number: 1, Price: 10.55, Description: "Spacious mountain view room"},
		Stays: []stay{
			{GuestInfo: "John Doe, with a dog", StartOffset: 9, Nights: 3},
			{GuestInfo: "Kate Spring", StartOffset: 17, Nights: 2},
		},
	},
	{
		Room: model.RoomInput{Number: 2, Price: 123.45, Description: "Budget room"},
		Stays: []stay{
			{GuestInfo: "Ivan Ivanov", StartOffset: 4, Nights: 3},
		},
	},
}

// Run inserts the demo rooms and their reservations. Rooms whose number is
// already taken are skipped along with their reservations, so running it
// twice changes nothing.
func Run(ctx context.Context, rooms roomrepo.RoomRepository, reservations reservationrepo.ReservationRepository, clk clock.Clock, log *logger.Logger) error {
	today := clk.Today()
	created := 0

	for _, entry := range demoData {
		_, err := rooms.FindByNumber(ctx, entry.Room.Number)
		if err == nil {
			log.Info("Seed room already present, skipping", "number", entry.Room.Number)
			continue
		}
		if !errors.Is(err, roomerrors.ErrNotFound) {
			return fmt.Errorf("failed to look up room %d: %w", entry.Room.Number, err)
		}

		room := &model.Room{
			ID:          uuid.NewString(),
			Number:      entry.Room.Number,
			Price:       entry.Room.Price,
			Description: entry.Room.Description,
			CreatedAt:   clk.Now(),
		}
		if err := rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("failed to seed room %d: %w", room.Number, err)
		}

		for _, s := range entry.Stays {
			start := today.AddDate(0, 0, s.StartOffset)
			res := &model.Reservation{
				ID:        uuid.NewString(),
				RoomID:    room.ID,
				GuestInfo: s.GuestInfo,
				CreatedAt: clk.Now(),
				StartDate: start,
				EndDate:   start.AddDate(0, 0, s.Nights),
			}
			if err := reservations.Create(ctx, res); err != nil {
				return fmt.Errorf("failed to seed reservation for %q: %w", s.GuestInfo, err)
			}
			created++
		}
		log.Info("Seeded room", "number", room.Number, "id", room.ID, "reservations", len(entry.Stays))
	}

	log.Info("Seed data applied", "reservations_created", created)
	return nil
}
