package flights

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetRoutes(ctx context.Context, origin, destination string, date time.Time) (*domain.RouteSearchResult, error) {
	args := m.Called(ctx, origin, destination, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteSearchResult), args.Error(1)
}

func (m *MockCache) SetRoutes(ctx context.Context, origin, destination string, date time.Time, result *domain.RouteSearchResult) error {
	args := m.Called(ctx, origin, destination, date, result)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func at(day, hour, min int) time.Time {
	return time.Date(2024, 5, day, hour, min, 0, 0, time.UTC)
}

func flight(id, origin, destination string, dep, arr time.Time) domain.Flight {
	return domain.Flight{
		FlightID:      id,
		FlightNumber:  id,
		AirlineName:   "Test Air",
		Origin:        origin,
		Destination:   destination,
		DepartureTime: dep,
		ArrivalTime:   arr,
	}
}

var searchDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestFlightService_FindRoutes_DirectAndTransit(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("AI101", "DEL", "BOM", at(1, 9, 0), at(1, 11, 0)),
		flight("6E201", "DEL", "HYD", at(1, 6, 0), at(1, 8, 0)),
		flight("6E301", "HYD", "BOM", at(1, 9, 30), at(1, 11, 0)),
	)
	service := NewFlightService(repo, nil)

	result, err := service.FindRoutes(context.Background(), "DEL", "BOM", searchDate)

	require.NoError(t, err)
	require.Len(t, result.DirectFlights, 1)
	assert.Equal(t, "AI101", result.DirectFlights[0].FlightID)
	require.Len(t, result.TransitRoutes, 1)
	assert.Equal(t, "6E201", result.TransitRoutes[0].FirstFlight.FlightID)
	assert.Equal(t, "6E301", result.TransitRoutes[0].SecondFlight.FlightID)
	assert.Equal(t, 5*time.Hour, result.TransitRoutes[0].TotalDuration)
}

func TestFlightService_FindRoutes_DirectOrderedAndDayBounded(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("LATE", "DEL", "BOM", at(1, 22, 0), at(2, 0, 10)),
		flight("EARLY", "DEL", "BOM", at(1, 0, 0), at(1, 2, 0)),
		flight("PREV", "DEL", "BOM", at(0, 23, 59), at(1, 2, 0)),
		flight("NEXT", "DEL", "BOM", at(2, 0, 0), at(2, 2, 0)),
	)
	service := NewFlightService(repo, nil)

	result, err := service.FindRoutes(context.Background(), "DEL", "BOM", searchDate.Add(15*time.Hour))

	require.NoError(t, err)
	require.Len(t, result.DirectFlights, 2)
	assert.Equal(t, "EARLY", result.DirectFlights[0].FlightID)
	assert.Equal(t, "LATE", result.DirectFlights[1].FlightID)
	assert.Empty(t, result.TransitRoutes)
}

func TestFlightService_FindRoutes_ConnectionWindow(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("LEG1", "DEL", "HYD", at(1, 6, 0), at(1, 8, 0)),
		// departs before the first leg lands
		flight("TOO-EARLY", "HYD", "BOM", at(1, 7, 30), at(1, 9, 0)),
		flight("SAME-DAY", "HYD", "BOM", at(1, 8, 0), at(1, 9, 30)),
		flight("NEXT-DAY", "HYD", "BOM", at(2, 20, 0), at(2, 21, 30)),
		// exactly 48h after arrival is outside the half-open window
		flight("EDGE", "HYD", "BOM", at(3, 8, 0), at(3, 9, 30)),
		flight("TOO-LATE", "HYD", "BOM", at(3, 10, 0), at(3, 11, 30)),
	)
	service := NewFlightService(repo, nil)

	result, err := service.FindRoutes(context.Background(), "DEL", "BOM", searchDate)

	require.NoError(t, err)
	var seconds []string
	for _, r := range result.TransitRoutes {
		seconds = append(seconds, r.SecondFlight.FlightID)
		assert.True(t, r.SecondFlight.DepartureTime.Before(r.FirstFlight.ArrivalTime.Add(ConnectionWindow)))
		assert.False(t, r.SecondFlight.DepartureTime.Before(r.FirstFlight.ArrivalTime))
	}
	assert.Equal(t, []string{"SAME-DAY", "NEXT-DAY"}, seconds)
}

func TestFlightService_FindRoutes_TransitRankedAndCapped(t *testing.T) {
	seed := []domain.Flight{flight("LEG1", "DEL", "HYD", at(1, 6, 0), at(1, 8, 0))}
	for i := 0; i < 8; i++ {
		dep := at(1, 9, 0).Add(time.Duration(7-i) * time.Hour)
		seed = append(seed, flight(fmt.Sprintf("CONN%d", i), "HYD", "BOM", dep, dep.Add(90*time.Minute)))
	}
	service := NewFlightService(repository.NewMemoryFlightRepository(seed...), nil)

	result, err := service.FindRoutes(context.Background(), "DEL", "BOM", searchDate)

	require.NoError(t, err)
	require.Len(t, result.TransitRoutes, MaxTransitRoutes)
	for i := 1; i < len(result.TransitRoutes); i++ {
		assert.LessOrEqual(t, result.TransitRoutes[i-1].TotalDuration, result.TransitRoutes[i].TotalDuration)
	}
	assert.Equal(t, "CONN7", result.TransitRoutes[0].SecondFlight.FlightID)
	assert.Equal(t, 4*time.Hour+30*time.Minute, result.TransitRoutes[0].TotalDuration)
}

func TestFlightService_FindRoutes_FirstLegsExcludeDestination(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("AI101", "DEL", "BOM", at(1, 6, 0), at(1, 8, 0)),
		flight("BOMBOM", "BOM", "BOM", at(1, 9, 0), at(1, 10, 0)),
	)
	service := NewFlightService(repo, nil)

	result, err := service.FindRoutes(context.Background(), "DEL", "BOM", searchDate)

	require.NoError(t, err)
	assert.Len(t, result.DirectFlights, 1)
	assert.Empty(t, result.TransitRoutes)
}

func TestFlightService_FindRoutes_EmptyIsSuccess(t *testing.T) {
	service := NewFlightService(repository.NewMemoryFlightRepository(), nil)

	result, err := service.FindRoutes(context.Background(), "DEL", "BOM", searchDate)

	require.NoError(t, err)
	assert.NotNil(t, result.DirectFlights)
	assert.NotNil(t, result.TransitRoutes)
	assert.Empty(t, result.DirectFlights)
	assert.Empty(t, result.TransitRoutes)
}

func TestFlightService_FindRoutes_Validation(t *testing.T) {
	service := NewFlightService(repository.NewMemoryFlightRepository(), nil)
	ctx := context.Background()

	_, err := service.FindRoutes(ctx, "", "BOM", searchDate)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.FindRoutes(ctx, "DEL", " ", searchDate)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.FindRoutes(ctx, "DEL", "BOM", time.Time{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_FindRoutes_CacheHit(t *testing.T) {
	mockCache := &MockCache{}
	service := NewFlightService(repository.NewMemoryFlightRepository(), mockCache)
	ctx := context.Background()

	cached := &domain.RouteSearchResult{DirectFlights: []domain.Flight{{FlightID: "CACHED"}}}
	mockCache.On("GetRoutes", ctx, "DEL", "BOM", searchDate).Return(cached, nil).Once()

	result, err := service.FindRoutes(ctx, "DEL", "BOM", searchDate.Add(10*time.Hour))

	require.NoError(t, err)
	assert.Same(t, cached, result)
	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "SetRoutes")
}

func TestFlightService_FindRoutes_CacheMissStores(t *testing.T) {
	mockCache := &MockCache{}
	repo := repository.NewMemoryFlightRepository(flight("AI101", "DEL", "BOM", at(1, 9, 0), at(1, 11, 0)))
	service := NewFlightService(repo, mockCache)
	ctx := context.Background()

	mockCache.On("GetRoutes", ctx, "DEL", "BOM", searchDate).Return(nil, errors.New("redis down")).Once()
	mockCache.On("SetRoutes", ctx, "DEL", "BOM", searchDate, mock.AnythingOfType("*domain.RouteSearchResult")).
		Return(errors.New("redis down")).Once()

	result, err := service.FindRoutes(ctx, "DEL", "BOM", searchDate)

	require.NoError(t, err)
	assert.Len(t, result.DirectFlights, 1)
	mockCache.AssertExpectations(t)
}

func TestFlightService_ListFlights_CacheMiss(t *testing.T) {
	mockCache := &MockCache{}
	repo := repository.NewMemoryFlightRepository(flight("AI101", "DEL", "BOM", at(1, 9, 0), at(1, 11, 0)))
	service := NewFlightService(repo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockCache.On("SetFlights", ctx, mock.Anything).Return(nil).Once()

	result, err := service.ListFlights(ctx)

	require.NoError(t, err)
	require.Len(t, result, 1)
	mockCache.AssertExpectations(t)
}

func TestFlightService_ListFlights_CacheHit(t *testing.T) {
	mockCache := &MockCache{}
	service := NewFlightService(repository.NewMemoryFlightRepository(), mockCache)
	ctx := context.Background()

	cached := []domain.Flight{{FlightID: "CACHED"}}
	mockCache.On("GetFlights", ctx).Return(cached, nil).Once()

	result, err := service.ListFlights(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, result)
	mockCache.AssertNotCalled(t, "SetFlights")
}

func TestFlightService_ListFlights_CacheErrorsAreLogged(t *testing.T) {
	mockCache := &MockCache{}
	repo := repository.NewMemoryFlightRepository(flight("AI101", "DEL", "BOM", at(1, 9, 0), at(1, 11, 0)))
	service := NewFlightService(repo, mockCache)
	var logs bytes.Buffer
	service.log = slog.New(slog.NewTextHandler(&logs, nil))
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), errors.New("redis down")).Once()
	mockCache.On("SetFlights", ctx, mock.Anything).Return(errors.New("redis down")).Once()

	result, err := service.ListFlights(ctx)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Contains(t, logs.String(), "flight cache read failed")
	assert.Contains(t, logs.String(), "flight cache write failed")
	mockCache.AssertExpectations(t)
}

func TestFlightService_CreateFlight(t *testing.T) {
	mockCache := &MockCache{}
	repo := repository.NewMemoryFlightRepository()
	service := NewFlightService(repo, mockCache)
	ctx := context.Background()

	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	created, err := service.CreateFlight(ctx, CreateFlightInput{
		FlightID:      "AI101-20240501",
		FlightNumber:  "AI101",
		AirlineName:   "Air India",
		Origin:        " DEL ",
		Destination:   "BOM",
		DepartureTime: at(1, 9, 0),
		ArrivalTime:   at(1, 11, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, "DEL", created.Origin)
	mockCache.AssertExpectations(t)

	got, err := service.GetFlight(ctx, "AI101-20240501")
	require.NoError(t, err)
	assert.Equal(t, "Air India", got.AirlineName)
}

func TestFlightService_CreateFlight_Invalid(t *testing.T) {
	service := NewFlightService(repository.NewMemoryFlightRepository(), nil)
	ctx := context.Background()
	valid := CreateFlightInput{
		FlightID: "F1", FlightNumber: "F1", AirlineName: "X", Origin: "DEL", Destination: "BOM",
		DepartureTime: at(1, 9, 0), ArrivalTime: at(1, 11, 0),
	}

	testCases := []struct {
		name   string
		mutate func(*CreateFlightInput)
	}{
		{name: "missing id", mutate: func(in *CreateFlightInput) { in.FlightID = "" }},
		{name: "missing airline", mutate: func(in *CreateFlightInput) { in.AirlineName = "" }},
		{name: "missing departure", mutate: func(in *CreateFlightInput) { in.DepartureTime = time.Time{} }},
		{name: "same airports", mutate: func(in *CreateFlightInput) { in.Destination = "DEL" }},
		{name: "arrival before departure", mutate: func(in *CreateFlightInput) { in.ArrivalTime = at(1, 8, 0) }},
		{name: "arrival equals departure", mutate: func(in *CreateFlightInput) { in.ArrivalTime = in.DepartureTime }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := service.CreateFlight(ctx, input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFlightService_CreateFlight_Duplicate(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(flight("F1", "DEL", "BOM", at(1, 9, 0), at(1, 11, 0)))
	service := NewFlightService(repo, nil)

	_, err := service.CreateFlight(context.Background(), CreateFlightInput{
		FlightID: "F1", FlightNumber: "F1", AirlineName: "X", Origin: "DEL", Destination: "BOM",
		DepartureTime: at(1, 9, 0), ArrivalTime: at(1, 11, 0),
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestFlightService_GetFlight_NotFound(t *testing.T) {
	service := NewFlightService(repository.NewMemoryFlightRepository(), nil)

	_, err := service.GetFlight(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}
