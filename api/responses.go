package api

import (
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

type flightResponse struct {
	FlightID          string `json:"flightId"`
	FlightNumber      string `json:"flightNumber"`
	AirlineName       string `json:"airlineName"`
	Origin            string `json:"origin"`
	Destination       string `json:"destination"`
	DepartureDateTime string `json:"departureDateTime"`
	ArrivalDateTime   string `json:"arrivalDateTime"`
}

type transitRouteResponse struct {
	FirstFlight  flightResponse `json:"firstFlight"`
	SecondFlight flightResponse `json:"secondFlight"`
	// milliseconds
	TotalDuration int64 `json:"totalDuration"`
}

type routesResponse struct {
	DirectFlights []flightResponse       `json:"directFlights"`
	TransitRoutes []transitRouteResponse `json:"transitRoutes"`
}

type timelineEventResponse struct {
	EventType  string `json:"eventType"`
	Location   string `json:"location"`
	FlightInfo string `json:"flightInfo,omitempty"`
	Notes      string `json:"notes"`
	Timestamp  string `json:"timestamp"`
}

type bookingResponse struct {
	RefID       string                  `json:"refId"`
	Origin      string                  `json:"origin"`
	Destination string                  `json:"destination"`
	Pieces      int                     `json:"pieces"`
	WeightKg    float64                 `json:"weightKg"`
	FlightIDs   []string                `json:"flightIds"`
	Status      string                  `json:"status"`
	Timeline    []timelineEventResponse `json:"timeline"`
	CreatedAt   string                  `json:"createdAt"`
	UpdatedAt   string                  `json:"updatedAt"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		FlightID:          f.FlightID,
		FlightNumber:      f.FlightNumber,
		AirlineName:       f.AirlineName,
		Origin:            f.Origin,
		Destination:       f.Destination,
		DepartureDateTime: f.DepartureTime.Format(time.RFC3339),
		ArrivalDateTime:   f.ArrivalTime.Format(time.RFC3339),
	}
}

func toFlightResponses(flights []domain.Flight) []flightResponse {
	resp := make([]flightResponse, 0, len(flights))
	for _, f := range flights {
		resp = append(resp, toFlightResponse(f))
	}
	return resp
}

func toRoutesResponse(r *domain.RouteSearchResult) routesResponse {
	resp := routesResponse{
		DirectFlights: toFlightResponses(r.DirectFlights),
		TransitRoutes: make([]transitRouteResponse, 0, len(r.TransitRoutes)),
	}
	for _, route := range r.TransitRoutes {
		resp.TransitRoutes = append(resp.TransitRoutes, transitRouteResponse{
			FirstFlight:   toFlightResponse(route.FirstFlight),
			SecondFlight:  toFlightResponse(route.SecondFlight),
			TotalDuration: route.TotalDuration.Milliseconds(),
		})
	}
	return resp
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	flightIDs := b.FlightIDs
	if flightIDs == nil {
		flightIDs = []string{}
	}
	timeline := make([]timelineEventResponse, 0, len(b.Timeline))
	for _, e := range b.Timeline {
		timeline = append(timeline, timelineEventResponse{
			EventType:  string(e.EventType),
			Location:   e.Location,
			FlightInfo: e.FlightInfo,
			Notes:      e.Notes,
			Timestamp:  e.Timestamp.Format(time.RFC3339),
		})
	}
	return bookingResponse{
		RefID:       b.RefID,
		Origin:      b.Origin,
		Destination: b.Destination,
		Pieces:      b.Pieces,
		WeightKg:    b.WeightKg,
		FlightIDs:   flightIDs,
		Status:      string(b.Status),
		Timeline:    timeline,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}
