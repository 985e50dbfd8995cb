package client

import (
	"context"
	"net/url"

	"onehotel/pkg/model"
)

const roomsPath = "/api/v1/rooms"

type RoomClient struct {
	httpClient *HttpClient
}

func NewRoomClient(httpClient *HttpClient) *RoomClient {
	return &RoomClient{httpClient: httpClient}
}

func (c *RoomClient) Create(ctx context.Context, in *model.RoomInput) (*model.Room, error) {
	resp, err := c.httpClient.POST(ctx, roomsPath, in)
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := decodeData(resp, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *RoomClient) GetAll(ctx context.Context) ([]*model.Room, error) {
	resp, err := c.httpClient.GET(ctx, roomsPath)
	if err != nil {
		return nil, err
	}
	var rooms []*model.Room
	if err := decodeData(resp, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *RoomClient) GetByID(ctx context.Context, id string) (*model.Room, error) {
	resp, err := c.httpClient.GET(ctx, roomsPath+"/id/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := decodeData(resp, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *RoomClient) Update(ctx context.Context, id string, in *model.RoomInput) (*model.Room, error) {
	resp, err := c.httpClient.PUT(ctx, roomsPath+"/id/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := decodeData(resp, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *RoomClient) Delete(ctx context.Context, id string) error {
	resp, err := c.httpClient.DELETE(ctx, roomsPath+"/id/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return resp.Err()
}

func (c *RoomClient) Reservations(ctx context.Context, id string, rng *model.DateRange) ([]*model.Reservation, error) {
	path := roomsPath + "/id/" + url.PathEscape(id) + "/reservations"
	if q := rangeQuery(rng); q != "" {
		path += "?" + q
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

func rangeQuery(rng *model.DateRange) string {
	if rng == nil {
		return ""
	}
	q := url.Values{}
	q.Set("start_date", rng.Start.Format(model.DateLayout))
	q.Set("end_date", rng.End.Format(model.DateLayout))
	return q.Encode()
}
