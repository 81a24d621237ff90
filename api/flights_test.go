package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) FindRoutes(ctx context.Context, origin, destination string, departureDate time.Time) (*domain.RouteSearchResult, error) {
	args := m.Called(ctx, origin, destination, departureDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteSearchResult), args.Error(1)
}

func (m *MockFlightUseCase) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) CreateFlight(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func hhmm(h, m int) time.Time {
	return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC)
}

func TestFlightHandler_routes(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights/routes?origin=DEL&destination=BOM&departureDate=2024-05-01", nil)

	first := domain.Flight{FlightID: "6E201", Origin: "DEL", Destination: "HYD", DepartureTime: hhmm(6, 0), ArrivalTime: hhmm(8, 0)}
	second := domain.Flight{FlightID: "6E301", Origin: "HYD", Destination: "BOM", DepartureTime: hhmm(9, 30), ArrivalTime: hhmm(11, 0)}
	result := &domain.RouteSearchResult{
		DirectFlights: []domain.Flight{{FlightID: "AI101", Origin: "DEL", Destination: "BOM", DepartureTime: hhmm(9, 0), ArrivalTime: hhmm(11, 0)}},
		TransitRoutes: []domain.TransitRoute{domain.NewTransitRoute(first, second)},
	}
	mockService.On("FindRoutes", c.Request.Context(), "DEL", "BOM", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)).Return(result, nil)

	handler.routes(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response routesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.DirectFlights, 1)
	assert.Equal(t, "2024-05-01T09:00:00Z", response.DirectFlights[0].DepartureDateTime)
	require.Len(t, response.TransitRoutes, 1)
	assert.Equal(t, (5 * time.Hour).Milliseconds(), response.TransitRoutes[0].TotalDuration)
	assert.Equal(t, "6E301", response.TransitRoutes[0].SecondFlight.FlightID)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_routes_BadDate(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights/routes?origin=DEL&destination=BOM&departureDate=01/05/2024", nil)

	handler.routes(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "FindRoutes")
}

func TestFlightHandler_routes_MissingParams(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights/routes?origin=DEL", nil)

	mockService.On("FindRoutes", c.Request.Context(), "DEL", "", time.Time{}).Return(nil, domain.ErrValidation)

	handler.routes(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := []byte(`{"flightId":"AI101-20240501","flightNumber":"AI101","airlineName":"Air India","origin":"DEL","destination":"BOM","departureDateTime":"2024-05-01T09:00:00Z","arrivalDateTime":"2024-05-01T11:00:00Z"}`)
	c.Request = httptest.NewRequest("POST", "/api/flights", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	input := flights.CreateFlightInput{
		FlightID: "AI101-20240501", FlightNumber: "AI101", AirlineName: "Air India", Origin: "DEL", Destination: "BOM",
		DepartureTime: hhmm(9, 0), ArrivalTime: hhmm(11, 0),
	}
	created := &domain.Flight{
		FlightID: "AI101-20240501", FlightNumber: "AI101", AirlineName: "Air India", Origin: "DEL", Destination: "BOM",
		DepartureTime: hhmm(9, 0), ArrivalTime: hhmm(11, 0),
	}
	mockService.On("CreateFlight", c.Request.Context(), input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights", nil)

	mockService.On("ListFlights", c.Request.Context()).Return([]domain.Flight{{FlightID: "AI101"}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "flightId", Value: "nope"}}
	c.Request = httptest.NewRequest("GET", "/api/flights/nope", nil)

	mockService.On("GetFlight", c.Request.Context(), "nope").Return(nil, domain.ErrFlightNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2024-05-01T10:00:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Day())

	_, err = parseDate("tomorrow")
	assert.Error(t, err)
}
