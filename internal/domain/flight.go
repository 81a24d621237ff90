package domain

import "time"

type Flight struct {
	FlightID      string
	FlightNumber  string
	AirlineName   string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Duration is the block time of the flight.
func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// TransitRoute is a one-stop itinerary: two legs sharing the intermediate airport.
type TransitRoute struct {
	FirstFlight   Flight
	SecondFlight  Flight
	TotalDuration time.Duration
}

func NewTransitRoute(first, second Flight) TransitRoute {
	return TransitRoute{
		FirstFlight:   first,
		SecondFlight:  second,
		TotalDuration: second.ArrivalTime.Sub(first.DepartureTime),
	}
}

type RouteSearchResult struct {
	DirectFlights []Flight
	TransitRoutes []TransitRoute
}
