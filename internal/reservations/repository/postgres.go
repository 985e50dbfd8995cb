package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	reservationerrors "onehotel/internal/reservations/errors"
	"onehotel/pkg/config"
	"onehotel/pkg/db"
	"onehotel/pkg/db/postgres"
	"onehotel/pkg/model"

	"github.com/jmoiron/sqlx"
)

const reservationColumns = "id, room_id, guest_info, created_at, start_date, end_date"

type postgresReservationRepository struct {
	cfg       *config.Config
	db        *sqlx.DB
	txManager db.TransactionManager
}

func NewPostgresReservationRepository(cfg *config.Config) ReservationRepository {
	return &postgresReservationRepository{
		cfg:       cfg,
		db:        cfg.Client.Postgres,
		txManager: postgres.NewTransactionManager(cfg.Client.Postgres),
	}
}

func (r *postgresReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO reservations (id, room_id, guest_info, created_at, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.RoomID, res.GuestInfo, res.CreatedAt, res.StartDate, res.EndDate,
	)
	if err != nil {
		return translateWriteError(err, "failed to create reservation")
	}
	return nil
}

func (r *postgresReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var res model.Reservation
	err := postgres.Conn(ctx, r.db).GetContext(ctx, &res,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	normalize(&res)
	return &res, nil
}

func (r *postgresReservationRepository) Find(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
	var (
		conds []string
		args  []any
	)
	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		conds = append(conds, fmt.Sprintf("room_id = $%d", len(args)))
	}
	if filter.Range != nil {
		args = append(args, filter.Range.Start)
		conds = append(conds, fmt.Sprintf("start_date >= $%d", len(args)))
		args = append(args, filter.Range.End)
		conds = append(conds, fmt.Sprintf("end_date <= $%d", len(args)))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return r.selectReservations(ctx, query+` ORDER BY start_date, created_at`, args...)
}

func (r *postgresReservationRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE room_id = $1 AND start_date < $2 AND end_date > $3`
	args := []any{roomID, end, start}
	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}
	return r.selectReservations(ctx, query+` ORDER BY start_date`, args...)
}

func (r *postgresReservationRepository) selectReservations(ctx context.Context, query string, args ...any) ([]*model.Reservation, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	reservations := make([]*model.Reservation, 0)
	if err := postgres.Conn(ctx, r.db).SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	for _, res := range reservations {
		normalize(res)
	}
	return reservations, nil
}

func (r *postgresReservationRepository) Update(ctx context.Context, res *model.Reservation) error {
	if err := parseID(res.ID); err != nil {
		return err
	}

	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := postgres.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE reservations SET room_id = $2, guest_info = $3, start_date = $4, end_date = $5 WHERE id = $1`,
		res.ID, res.RoomID, res.GuestInfo, res.StartDate, res.EndDate,
	)
	if err != nil {
		return translateWriteError(err, "failed to update reservation")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, res.ID)
	}
	return nil
}

func (r *postgresReservationRepository) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := postgres.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, id)
	}
	return nil
}

func (r *postgresReservationRepository) DeleteByRoomID(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := postgres.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE room_id = $1`, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reservations of room %s: %w", roomID, err)
	}
	return result.RowsAffected()
}

func (r *postgresReservationRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// translateWriteError maps constraint violations raised by the schema onto
// repository sentinels.
func translateWriteError(err error, message string) error {
	switch {
	case postgres.IsExclusionViolation(err):
		return fmt.Errorf("%w: %v", reservationerrors.ErrOverlap, err)
	case postgres.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", reservationerrors.ErrRoomMissing, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
