package client

import (
	"context"
	"net/url"

	"onehotel/pkg/model"
)

const reservationsPath = "/api/v1/reservations"

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(httpClient *HttpClient) *ReservationClient {
	return &ReservationClient{httpClient: httpClient}
}

func (c *ReservationClient) Create(ctx context.Context, in *model.ReservationInput) (*model.Reservation, error) {
	resp, err := c.httpClient.POST(ctx, reservationsPath, in)
	if err != nil {
		return nil, err
	}
	var reservation model.Reservation
	if err := decodeData(resp, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CreateIdempotent sends key as the Idempotency-Key header so retries are safe.
func (c *ReservationClient) CreateIdempotent(ctx context.Context, key string, in *model.ReservationInput) (*model.Reservation, error) {
	resp, err := c.httpClient.POSTWithHeaders(ctx, reservationsPath, in, map[string]string{"Idempotency-Key": key})
	if err != nil {
		return nil, err
	}
	var reservation model.Reservation
	if err := decodeData(resp, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *ReservationClient) GetAll(ctx context.Context, roomID string, rng *model.DateRange) ([]*model.Reservation, error) {
	q := url.Values{}
	if roomID != "" {
		q.Set("room_id", roomID)
	}
	if rng != nil {
		q.Set("start_date", rng.Start.Format(model.DateLayout))
		q.Set("end_date", rng.End.Format(model.DateLayout))
	}
	path := reservationsPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var reservations []*model.Reservation
	if err := decodeData(resp, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *ReservationClient) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	resp, err := c.httpClient.GET(ctx, reservationsPath+"/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var reservation model.Reservation
	if err := decodeData(resp, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *ReservationClient) Update(ctx context.Context, id string, in *model.ReservationInput) (*model.Reservation, error) {
	resp, err := c.httpClient.PUT(ctx, reservationsPath+"/id/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	var reservation model.Reservation
	if err := decodeData(resp, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *ReservationClient) Delete(ctx context.Context, id string) error {
	resp, err := c.httpClient.DELETE(ctx, reservationsPath+"/id/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return resp.Err()
}
