package service

import (
	"context"
	"errors"
	"fmt"

	roomerrors "onehotel/internal/rooms/errors"
	"onehotel/internal/rooms/repository"
	"onehotel/internal/rooms/validator"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/events"
	"onehotel/pkg/model"
	"onehotel/pkg/sanitizer"
	"onehotel/pkg/tracing"

	"github.com/google/uuid"
)

var tracer = tracing.Tracer("onehotel/internal/rooms/service")

type RoomService interface {
	GetAll(ctx context.Context) ([]*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	Add(ctx context.Context, in *model.RoomInput) (*model.Room, error)
	Update(ctx context.Context, id string, in *model.RoomInput) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

// ReservationCleaner removes the reservations held by a room being deleted.
type ReservationCleaner interface {
	DeleteByRoomID(ctx context.Context, roomID string) (int64, error)
}

type roomService struct {
	repo         repository.RoomRepository
	validator    *validator.RoomValidator
	reservations ReservationCleaner
	publisher    events.Publisher
	clock        clock.Clock
	cfg          *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	reservations ReservationCleaner,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:         repo,
		validator:    validator,
		reservations: reservations,
		publisher:    publisher,
		clock:        clk,
		cfg:          cfg,
	}
}

func (s *roomService) GetAll(ctx context.Context) (rooms []*model.Room, err error) {
	ctx, span := tracer.Start(ctx, "RoomService.GetAll")
	defer func() { tracing.End(span, err) }()

	rooms, err = s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to get all rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (room *model.Room, err error) {
	ctx, span := tracer.Start(ctx, "RoomService.GetByID")
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve room")
	}
	return room, nil
}

func (s *roomService) Add(ctx context.Context, in *model.RoomInput) (room *model.Room, err error) {
	ctx, span := tracer.Start(ctx, "RoomService.Add")
	defer func() { tracing.End(span, err) }()

	if err = s.validate(in); err != nil {
		return nil, err
	}

	room = &model.Room{
		ID:          uuid.NewString(),
		Number:      in.Number,
		Price:       in.Price,
		Description: in.Description,
		CreatedAt:   s.clock.Now(),
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureNumberFree(txCtx, room.Number, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, room); err != nil {
			return s.mapRepoError(err, room.ID, "Failed to create room")
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create room", err, "number", in.Number)
		return nil, err
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"number", room.Number,
	)
	s.publish(ctx, events.RoomCreated, room.ID, room)
	return room, nil
}

func (s *roomService) Update(ctx context.Context, id string, in *model.RoomInput) (room *model.Room, err error) {
	ctx, span := tracer.Start(ctx, "RoomService.Update")
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if err = s.validate(in); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check room existence")
		}
		if err := s.ensureNumberFree(txCtx, in.Number, id); err != nil {
			return err
		}

		existing.Number = in.Number
		existing.Price = in.Price
		existing.Description = in.Description
		if err := s.repo.Update(txCtx, existing); err != nil {
			return s.mapRepoError(err, id, "Failed to update room")
		}
		room = existing
		return nil
	})
	if err != nil {
		s.logFailure("Failed to update room", err, "id", id)
		return nil, err
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "number", room.Number)
	s.publish(ctx, events.RoomUpdated, room.ID, room)
	return room, nil
}

// Delete removes the room together with its reservations.
func (s *roomService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "RoomService.Delete")
	defer func() { tracing.End(span, err) }()

	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	var removed int64
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to check room existence")
		}

		var err error
		removed, err = s.reservations.DeleteByRoomID(txCtx, id)
		if err != nil {
			s.cfg.Log.Error("Failed to delete room reservations", "room_id", id, "error", err)
			return apperrors.Internal("Failed to delete room reservations", err)
		}

		if err := s.repo.Delete(txCtx, id); err != nil {
			return s.mapRepoError(err, id, "Failed to delete room")
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to delete room", err, "id", id)
		return err
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "reservations_removed", removed)
	s.publish(ctx, events.RoomDeleted, id, nil)
	return nil
}

func (s *roomService) validate(in *model.RoomInput) error {
	if in == nil {
		return apperrors.InvalidInput("Room body is required")
	}
	in.Description = sanitizer.NormalizeDescription(in.Description)

	if err := s.validator.Validate(in); err != nil {
		s.cfg.Log.Warn("Room validation failed",
			"number", in.Number,
			"error", err,
		)
		details := map[string]any{"error": err.Error()}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details = map[string]any{"errors": fieldErrs}
		}
		return apperrors.Validation("Room validation failed", details)
	}
	return nil
}

// ensureNumberFree fails when a room other than selfID already uses number.
func (s *roomService) ensureNumberFree(ctx context.Context, number int, selfID string) error {
	existing, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return nil
		}
		s.cfg.Log.Error("Failed to look up room number", "number", number, "error", err)
		return apperrors.Internal("Failed to check room number", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return duplicateNumber(number)
}

func duplicateNumber(number int) error {
	return apperrors.ValidationKind(apperrors.KindDuplicateRoomNumber,
		fmt.Sprintf("Room number %d already exists", number)).
		WithDetails(map[string]any{"number": number})
}

func (s *roomService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, roomerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	case errors.Is(err, roomerrors.ErrDuplicateNumber):
		return apperrors.ValidationKind(apperrors.KindDuplicateRoomNumber, "Room number already exists")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *roomService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.IsClientError(err) {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

// publish emits a lifecycle event for a committed change. Delivery failures
// do not undo the change.
func (s *roomService) publish(ctx context.Context, eventType events.Type, roomID string, payload any) {
	if err := s.publisher.Publish(ctx, events.New(ctx, eventType, roomID, payload)); err != nil {
		s.cfg.Log.Warn("Failed to publish room event",
			"event_type", eventType,
			"room_id", roomID,
			"error", err,
		)
	}
}
