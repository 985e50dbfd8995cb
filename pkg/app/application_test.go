package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onehotel/pkg/client"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/events"
	"onehotel/pkg/logger"
	"onehotel/pkg/model"
)

var today = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func day(offset int) model.Date {
	return model.NewDate(today.AddDate(0, 0, offset))
}

func testConfig() *config.Config {
	return &config.Config{
		StoreDriver:        config.StoreMemory,
		Port:               "0",
		Location:           time.UTC,
		RateLimitRequests:  1000,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     5 * time.Second,
		IdempotencyTTL:     time.Minute,
		IdempotencyBackend: config.IdempotencyMemory,
		MaxRequestSize:     1 << 20,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		IdleTimeout:        5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		MaxReservationDays: config.DefaultMaxReservationDays,
		MinAdvanceDays:     config.DefaultMinAdvanceDays,
		MaxAdvanceDays:     config.DefaultMaxAdvanceDays,
		Log:                logger.Nop(),
		Client:             client.NewClient(),
	}
}

type apiFixture struct {
	rooms        *client.RoomClient
	reservations *client.ReservationClient
	http         *client.HttpClient
	publisher    *events.Recorder
}

func newAPI(t *testing.T, mutate func(cfg *config.Config)) *apiFixture {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	publisher := events.NewRecorder()
	application := NewApplication(cfg)
	application.SetApp(Dependencies{
		Stores:    NewMemoryStores(),
		Publisher: publisher,
		Clock:     clock.NewFixed(today.Add(9 * time.Hour)),
	})
	t.Cleanup(func() {
		application.idempotencyStore.Stop()
		application.rateLimiter.Stop()
	})

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)

	httpClient := client.NewHttpClient(server.URL)
	httpClient.SigningSecret = cfg.APISigningSecret
	return &apiFixture{
		rooms:        client.NewRoomClient(httpClient),
		reservations: client.NewReservationClient(httpClient),
		http:         httpClient,
		publisher:    publisher,
	}
}

func (f *apiFixture) room(t *testing.T, number int) *model.Room {
	t.Helper()
	room, err := f.rooms.Create(context.Background(), &model.RoomInput{Number: number, Price: 99.5, Description: "Sea view"})
	require.NoError(t, err)
	return room
}

func kindOf(t *testing.T, err error) apperrors.Kind {
	t.Helper()
	require.Error(t, err)
	return apperrors.KindOf(err)
}

func TestAPI_HealthEndpoints(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()

	resp, err := f.http.GET(ctx, "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = f.http.GET(ctx, "/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ReservationLifecycle(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()
	room := f.room(t, 1)

	created, err := f.reservations.Create(ctx, &model.ReservationInput{
		RoomID: room.ID, GuestInfo: "  John Doe,\twith a dog ", StartDate: day(9), EndDate: day(12),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "John Doe, with a dog", created.GuestInfo)
	assert.True(t, created.StartDate.Equal(day(9).Time))

	fetched, err := f.reservations.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	updated, err := f.reservations.Update(ctx, created.ID, &model.ReservationInput{
		RoomID: room.ID, GuestInfo: "Kate Spring", StartDate: day(10), EndDate: day(13),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kate Spring", updated.GuestInfo)

	byRoom, err := f.rooms.Reservations(ctx, room.ID, nil)
	require.NoError(t, err)
	assert.Len(t, byRoom, 1)

	require.NoError(t, f.reservations.Delete(ctx, created.ID))
	_, err = f.reservations.GetByID(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))

	assert.Equal(t, []events.Type{
		events.RoomCreated,
		events.ReservationCreated,
		events.ReservationUpdated,
		events.ReservationDeleted,
	}, f.publisher.Types())
}

func TestAPI_DateRules(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()
	room := f.room(t, 1)

	tests := []struct {
		name       string
		start, end model.Date
		kind       apperrors.Kind
	}{
		{"same day booking", day(0), day(1), apperrors.KindTooSoon},
		{"forty day stay", day(1), day(40), apperrors.KindDurationTooLong},
		{"beyond the window", day(31), day(32), apperrors.KindTooFarAhead},
		{"end before start", day(5), day(3), apperrors.KindInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reservations.Create(ctx, &model.ReservationInput{
				RoomID: room.ID, GuestInfo: "Guest", StartDate: tt.start, EndDate: tt.end,
			})
			assert.Equal(t, tt.kind, kindOf(t, err))
			assert.Equal(t, http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())
		})
	}
}

func TestAPI_OverlapConflict(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()
	room := f.room(t, 1)
	other := f.room(t, 2)

	_, err := f.reservations.Create(ctx, &model.ReservationInput{RoomID: room.ID, GuestInfo: "A", StartDate: day(9), EndDate: day(12)})
	require.NoError(t, err)

	_, err = f.reservations.Create(ctx, &model.ReservationInput{RoomID: room.ID, GuestInfo: "B", StartDate: day(11), EndDate: day(13)})
	assert.Equal(t, apperrors.KindOverlappingReservation, kindOf(t, err))
	assert.Equal(t, http.StatusConflict, apperrors.AsAppError(err).StatusCode())

	_, err = f.reservations.Create(ctx, &model.ReservationInput{RoomID: room.ID, GuestInfo: "C", StartDate: day(12), EndDate: day(14)})
	require.NoError(t, err, "back-to-back stays must be accepted")

	_, err = f.reservations.Create(ctx, &model.ReservationInput{RoomID: other.ID, GuestInfo: "D", StartDate: day(9), EndDate: day(12)})
	require.NoError(t, err, "same dates in another room must be accepted")
}

func TestAPI_MissingFieldAndRoom(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()

	_, err := f.reservations.Create(ctx, &model.ReservationInput{GuestInfo: "A", StartDate: day(9), EndDate: day(12)})
	assert.Equal(t, apperrors.KindMissingField, kindOf(t, err))

	_, err = f.reservations.Create(ctx, &model.ReservationInput{
		RoomID: "4f1c2b3a-9d8e-4c7b-a6f5-0e1d2c3b4a59", GuestInfo: "A", StartDate: day(9), EndDate: day(12),
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAPI_DateFilter(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()
	room := f.room(t, 1)

	for _, stay := range [][2]int{{2, 4}, {9, 12}, {20, 22}} {
		_, err := f.reservations.Create(ctx, &model.ReservationInput{
			RoomID: room.ID, GuestInfo: "Guest", StartDate: day(stay[0]), EndDate: day(stay[1]),
		})
		require.NoError(t, err)
	}

	all, err := f.reservations.GetAll(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inside, err := f.reservations.GetAll(ctx, "", &model.DateRange{Start: day(1).Time, End: day(12).Time})
	require.NoError(t, err)
	assert.Len(t, inside, 2)

	resp, err := f.http.GET(ctx, "/api/v1/reservations?start_date=2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RoomRulesAndCascade(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()
	room := f.room(t, 7)

	_, err := f.rooms.Create(ctx, &model.RoomInput{Number: 7, Price: 10})
	assert.Equal(t, apperrors.KindDuplicateRoomNumber, kindOf(t, err))
	assert.Equal(t, http.StatusConflict, apperrors.AsAppError(err).StatusCode())

	_, err = f.reservations.Create(ctx, &model.ReservationInput{RoomID: room.ID, GuestInfo: "A", StartDate: day(9), EndDate: day(12)})
	require.NoError(t, err)

	require.NoError(t, f.rooms.Delete(ctx, room.ID))

	all, err := f.reservations.GetAll(ctx, "", nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAPI_IdempotentCreate(t *testing.T) {
	f := newAPI(t, nil)
	ctx := context.Background()
	room := f.room(t, 1)
	in := &model.ReservationInput{RoomID: room.ID, GuestInfo: "A", StartDate: day(9), EndDate: day(12)}

	first, err := f.reservations.CreateIdempotent(ctx, "key-1", in)
	require.NoError(t, err)
	second, err := f.reservations.CreateIdempotent(ctx, "key-1", in)
	require.NoError(t, err, "a replayed request must not hit the overlap rule")
	assert.Equal(t, first.ID, second.ID)
}

func TestAPI_SignedRequests(t *testing.T) {
	f := newAPI(t, func(cfg *config.Config) { cfg.APISigningSecret = "s3cret" })
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &model.RoomInput{Number: 1, Price: 10})
	require.NoError(t, err)

	f.http.SigningSecret = "wrong"
	_, err = f.rooms.Create(ctx, &model.RoomInput{Number: 2, Price: 10})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.AsAppError(err).StatusCode())
}
