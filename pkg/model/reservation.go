package model

import (
	"encoding/json"
	"time"
)

const MaxGuestInfoLen = 1024

type Reservation struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	RoomID    string    `json:"room_id" bson:"room_id" db:"room_id"`
	GuestInfo string    `json:"guest_info" bson:"guest_info" db:"guest_info"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	StartDate time.Time `json:"start_date" bson:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date" db:"end_date"`
}

// MarshalJSON renders the stay dates without a time component.
func (r Reservation) MarshalJSON() ([]byte, error) {
	type alias Reservation
	return json.Marshal(struct {
		alias
		StartDate Date `json:"start_date"`
		EndDate   Date `json:"end_date"`
	}{
		alias:     alias(r),
		StartDate: NewDate(r.StartDate),
		EndDate:   NewDate(r.EndDate),
	})
}

func (r *Reservation) UnmarshalJSON(data []byte) error {
	type alias Reservation
	aux := struct {
		*alias
		StartDate Date `json:"start_date"`
		EndDate   Date `json:"end_date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.StartDate = aux.StartDate.Time
	r.EndDate = aux.EndDate.Time
	return nil
}

// Overlaps reports whether the half-open stays [start, end) intersect.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && r.EndDate.After(start)
}

// ReservationInput is the caller-supplied part of a reservation. Field order
// is the order in which missing fields are reported.
type ReservationInput struct {
	RoomID    string `json:"room_id" validate:"required"`
	GuestInfo string `json:"guest_info" validate:"required,notblank,max=1024"`
	StartDate Date   `json:"start_date" validate:"required"`
	EndDate   Date   `json:"end_date" validate:"required"`
}

type ReservationFilter struct {
	RoomID string
	Range  *DateRange
}
