package repository

import (
	"context"
	"fmt"

	roomerrors "onehotel/internal/rooms/errors"
	"onehotel/pkg/config"
	"onehotel/pkg/db"
	"onehotel/pkg/db/postgres"
	"onehotel/pkg/model"

	"github.com/jmoiron/sqlx"
)

const roomColumns = "id, number, price, description, created_at"

type postgresRoomRepository struct {
	cfg       *config.Config
	db        *sqlx.DB
	txManager db.TransactionManager
}

func NewPostgresRoomRepository(cfg *config.Config) RoomRepository {
	return &postgresRoomRepository{
		cfg:       cfg,
		db:        cfg.Client.Postgres,
		txManager: postgres.NewTransactionManager(cfg.Client.Postgres),
	}
}

func (r *postgresRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO rooms (id, number, price, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		room.ID, room.Number, room.Price, room.Description, room.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %d", roomerrors.ErrDuplicateNumber, room.Number)
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *postgresRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var room model.Room
	err := postgres.Conn(ctx, r.db).GetContext(ctx, &room,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", roomerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

func (r *postgresRoomRepository) FindByNumber(ctx context.Context, number int) (*model.Room, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var room model.Room
	err := postgres.Conn(ctx, r.db).GetContext(ctx, &room,
		`SELECT `+roomColumns+` FROM rooms WHERE number = $1`, number)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("%w: number %d", roomerrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to find room by number: %w", err)
	}
	return &room, nil
}

func (r *postgresRoomRepository) FindAll(ctx context.Context) ([]*model.Room, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	rooms := make([]*model.Room, 0)
	if err := postgres.Conn(ctx, r.db).SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM rooms ORDER BY number`); err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	return rooms, nil
}

func (r *postgresRoomRepository) Update(ctx context.Context, room *model.Room) error {
	if err := parseID(room.ID); err != nil {
		return err
	}

	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE rooms SET number = $2, price = $3, description = $4 WHERE id = $1`,
		room.ID, room.Number, room.Price, room.Description,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %d", roomerrors.ErrDuplicateNumber, room.Number)
		}
		return fmt.Errorf("failed to update room: %w", err)
	}
	return notFoundIfNoRows(result.RowsAffected, room.ID)
}

func (r *postgresRoomRepository) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := postgres.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return notFoundIfNoRows(result.RowsAffected, id)
}

func (r *postgresRoomRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func notFoundIfNoRows(rowsAffected func() (int64, error), id string) error {
	n, err := rowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", roomerrors.ErrNotFound, id)
	}
	return nil
}
