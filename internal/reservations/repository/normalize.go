package repository

import (
	"onehotel/pkg/clock"
	"onehotel/pkg/model"
)

// normalize puts dates read back from a store into the same shape the
// service writes: calendar dates at midnight UTC and a UTC created_at.
func normalize(res *model.Reservation) {
	res.StartDate = clock.StartOfDay(res.StartDate.UTC())
	res.EndDate = clock.StartOfDay(res.EndDate.UTC())
	res.CreatedAt = res.CreatedAt.UTC()
}
