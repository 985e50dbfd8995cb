package model

import "time"

const (
	MaxRoomPrice          = 9999.99
	MaxRoomDescriptionLen = 2048
)

type Room struct {
	ID          string    `json:"id" bson:"_id" db:"id"`
	Number      int       `json:"number" bson:"number" db:"number"`
	Price       float64   `json:"price" bson:"price" db:"price"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// RoomInput is the caller-supplied part of a room.
type RoomInput struct {
	Number      int     `json:"number" validate:"required,min=1"`
	Price       float64 `json:"price" validate:"min=0,max=9999.99,cents"`
	Description string  `json:"description" validate:"max=2048"`
}
