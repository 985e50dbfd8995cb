package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationerrors "onehotel/internal/reservations/errors"
	"onehotel/pkg/config"
	"onehotel/pkg/db"
	mongotx "onehotel/pkg/db/mongo"
	"onehotel/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	Find(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error)
	// FindOverlapping returns reservations of roomID intersecting [start, end),
	// leaving out excludeID when it is set.
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation) error
	Delete(ctx context.Context, id string) error
	DeleteByRoomID(ctx context.Context, roomID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  db.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: database.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}
	return nil
}

var sortByStay = bson.D{{Key: "start_date", Value: 1}, {Key: "created_at", Value: 1}}

func (r *mongoReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var res model.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	normalize(&res)
	return &res, nil
}

func (r *mongoReservationRepository) Find(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
	query := bson.M{}
	if filter.RoomID != "" {
		query["room_id"] = filter.RoomID
	}
	if filter.Range != nil {
		query["start_date"] = bson.M{"$gte": filter.Range.Start}
		query["end_date"] = bson.M{"$lte": filter.Range.End}
	}
	return r.find(ctx, query)
}

func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
	query := bson.M{
		"room_id":    roomID,
		"start_date": bson.M{"$lt": end},
		"end_date":   bson.M{"$gt": start},
	}
	if excludeID != "" {
		query["_id"] = bson.M{"$ne": excludeID}
	}
	return r.find(ctx, query)
}

func (r *mongoReservationRepository) find(ctx context.Context, query bson.M) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(sortByStay))
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := make([]*model.Reservation, 0)
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	for _, res := range reservations {
		normalize(res)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, res *model.Reservation) error {
	if err := parseID(res.ID); err != nil {
		return err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"room_id":    res.RoomID,
			"guest_info": res.GuestInfo,
			"start_date": res.StartDate,
			"end_date":   res.EndDate,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": res.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, res.ID)
	}
	return nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", reservationerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoReservationRepository) DeleteByRoomID(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete reservations of room %s: %w", roomID, err)
	}
	return result.DeletedCount, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
