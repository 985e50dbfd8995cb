package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationerrors "onehotel/internal/reservations/errors"
	"onehotel/internal/reservations/repository"
	"onehotel/internal/reservations/validator"
	roomerrors "onehotel/internal/rooms/errors"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/events"
	"onehotel/pkg/model"
	"onehotel/pkg/sanitizer"
	"onehotel/pkg/tracing"

	"github.com/google/uuid"
)

var tracer = tracing.Tracer("onehotel/internal/reservations/service")

type ReservationService interface {
	GetAll(ctx context.Context, rng *model.DateRange) ([]*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetByRoomID(ctx context.Context, roomID string, rng *model.DateRange) ([]*model.Reservation, error)
	Add(ctx context.Context, in *model.ReservationInput) (*model.Reservation, error)
	Update(ctx context.Context, id string, in *model.ReservationInput) (*model.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// RoomFinder is the room lookup reservations depend on.
type RoomFinder interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	rooms     RoomFinder
	validator *validator.ReservationValidator
	publisher events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	rooms RoomFinder,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		rooms:     rooms,
		validator: validator,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *reservationService) GetAll(ctx context.Context, rng *model.DateRange) (reservations []*model.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.GetAll")
	defer func() { tracing.End(span, err) }()

	reservations, err = s.repo.Find(ctx, model.ReservationFilter{Range: normalizeRange(rng)})
	if err != nil {
		s.cfg.Log.Error("Failed to get all reservations", "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (res *model.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.GetByID")
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	res, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve reservation")
	}
	return res, nil
}

func (s *reservationService) GetByRoomID(ctx context.Context, roomID string, rng *model.DateRange) (reservations []*model.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.GetByRoomID")
	defer func() { tracing.End(span, err) }()

	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if err = s.ensureRoomExists(ctx, roomID); err != nil {
		return nil, err
	}

	reservations, err = s.repo.Find(ctx, model.ReservationFilter{RoomID: roomID, Range: normalizeRange(rng)})
	if err != nil {
		s.cfg.Log.Error("Failed to get room reservations", "room_id", roomID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) Add(ctx context.Context, in *model.ReservationInput) (res *model.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Add")
	defer func() { tracing.End(span, err) }()

	today := s.clock.Today()

	if err = s.validate(in); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureRoomExists(txCtx, in.RoomID); err != nil {
			return err
		}

		start, end, err := s.checkDates(in, today)
		if err != nil {
			return err
		}
		if err := s.ensureNoOverlap(txCtx, in.RoomID, start, end, ""); err != nil {
			return err
		}

		candidate := &model.Reservation{
			ID:        uuid.NewString(),
			RoomID:    in.RoomID,
			GuestInfo: in.GuestInfo,
			CreatedAt: s.clock.Now(),
			StartDate: start,
			EndDate:   end,
		}
		if err := s.repo.Create(txCtx, candidate); err != nil {
			return s.mapRepoError(err, candidate.ID, "Failed to create reservation")
		}
		res = candidate
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create reservation", err, "room_id", in.RoomID)
		return nil, err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", res.ID,
		"room_id", res.RoomID,
		"start_date", res.StartDate.Format(model.DateLayout),
		"end_date", res.EndDate.Format(model.DateLayout),
	)
	s.publish(ctx, events.ReservationCreated, res.ID, res)
	return res, nil
}

// Update replaces room, guest and dates of a reservation. Its own current
// stay never counts as an overlap.
func (s *reservationService) Update(ctx context.Context, id string, in *model.ReservationInput) (res *model.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Update")
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	today := s.clock.Today()

	if err = s.validate(in); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check reservation existence")
		}
		if err := s.ensureRoomExists(txCtx, in.RoomID); err != nil {
			return err
		}

		start, end, err := s.checkDates(in, today)
		if err != nil {
			return err
		}
		if err := s.ensureNoOverlap(txCtx, in.RoomID, start, end, existing.ID); err != nil {
			return err
		}

		existing.RoomID = in.RoomID
		existing.GuestInfo = in.GuestInfo
		existing.StartDate = start
		existing.EndDate = end
		if err := s.repo.Update(txCtx, existing); err != nil {
			return s.mapRepoError(err, id, "Failed to update reservation")
		}
		res = existing
		return nil
	})
	if err != nil {
		s.logFailure("Failed to update reservation", err, "id", id)
		return nil, err
	}

	s.cfg.Log.Info("Reservation updated successfully", "id", id, "room_id", res.RoomID)
	s.publish(ctx, events.ReservationUpdated, res.ID, res)
	return res, nil
}

func (s *reservationService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Delete")
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		err = s.mapRepoError(err, id, "Failed to delete reservation")
		s.logFailure("Failed to delete reservation", err, "id", id)
		return err
	}

	s.cfg.Log.Info("Reservation deleted successfully", "id", id)
	s.publish(ctx, events.ReservationDeleted, id, nil)
	return nil
}

func (s *reservationService) validate(in *model.ReservationInput) error {
	if in != nil {
		in.GuestInfo = sanitizer.NormalizeGuestInfo(in.GuestInfo)
	}
	if err := s.validator.Validate(in); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return err
	}
	return nil
}

func (s *reservationService) checkDates(in *model.ReservationInput, today time.Time) (time.Time, time.Time, error) {
	start, end := s.validator.Normalize(in)
	if err := s.validator.CheckDates(start, end, today); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (s *reservationService) ensureRoomExists(ctx context.Context, roomID string) error {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) || errors.Is(err, roomerrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Room", roomID)
		}
		s.cfg.Log.Error("Failed to look up room", "room_id", roomID, "error", err)
		return apperrors.Internal("Failed to check room existence", err)
	}
	return nil
}

// ensureNoOverlap rejects [start, end) when it intersects another stay in
// the same room. Stays that only touch are allowed.
func (s *reservationService) ensureNoOverlap(ctx context.Context, roomID string, start, end time.Time, excludeID string) error {
	candidates, err := s.repo.FindOverlapping(ctx, roomID, start, end, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check overlapping reservations", "room_id", roomID, "error", err)
		return apperrors.Internal("Failed to check overlapping reservations", err)
	}

	for _, other := range candidates {
		if other.ID == excludeID || !other.Overlaps(start, end) {
			continue
		}
		return apperrors.ValidationKind(apperrors.KindOverlappingReservation,
			fmt.Sprintf("Room is already reserved from %s to %s",
				other.StartDate.Format(model.DateLayout), other.EndDate.Format(model.DateLayout))).
			WithDetails(map[string]any{"conflicting_id": other.ID})
	}
	return nil
}

func (s *reservationService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, reservationerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Reservation", id)
	case errors.Is(err, reservationerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid reservation ID format")
	case errors.Is(err, reservationerrors.ErrOverlap):
		return apperrors.ValidationKind(apperrors.KindOverlappingReservation, "Room is already reserved for these dates")
	case errors.Is(err, reservationerrors.ErrRoomMissing):
		return apperrors.NotFound("Room")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *reservationService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.IsClientError(err) {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func (s *reservationService) publish(ctx context.Context, eventType events.Type, reservationID string, payload any) {
	if err := s.publisher.Publish(ctx, events.New(ctx, eventType, reservationID, payload)); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservationID,
			"error", err,
		)
	}
}

func normalizeRange(rng *model.DateRange) *model.DateRange {
	if rng == nil {
		return nil
	}
	return &model.DateRange{Start: clock.StartOfDay(rng.Start), End: clock.StartOfDay(rng.End)}
}
