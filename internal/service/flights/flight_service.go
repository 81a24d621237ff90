package flights

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/repository"
)

const (
	// MaxTransitRoutes caps the ranked one-stop itineraries returned by FindRoutes.
	MaxTransitRoutes = 5
	// ConnectionWindow is how long after the first leg lands a connection may depart.
	ConnectionWindow = 48 * time.Hour
	// ListLimit caps ListFlights.
	ListLimit = 100
)

type FlightUseCase interface {
	FindRoutes(ctx context.Context, origin, destination string, departureDate time.Time) (*domain.RouteSearchResult, error)
	ListFlights(ctx context.Context) ([]domain.Flight, error)
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
	CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
}

// FlightCache is optional; every method is best effort.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetRoutes(ctx context.Context, origin, destination string, date time.Time) (*domain.RouteSearchResult, error)
	SetRoutes(ctx context.Context, origin, destination string, date time.Time, result *domain.RouteSearchResult) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightID      string    `json:"flightId"`
	FlightNumber  string    `json:"flightNumber"`
	AirlineName   string    `json:"airlineName"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureDateTime"`
	ArrivalTime   time.Time `json:"arrivalDateTime"`
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *slog.Logger
}

// NewFlightService accepts a nil cache.
func NewFlightService(repo repository.FlightRepository, cache FlightCache) *FlightService {
	return &FlightService{repo: repo, cache: cache, log: slog.Default()}
}

// FindRoutes returns the direct flights departing on departureDate and the
// fastest one-stop connections. The day window is taken in departureDate's
// location.
func (s *FlightService) FindRoutes(ctx context.Context, origin, destination string, departureDate time.Time) (*domain.RouteSearchResult, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" || departureDate.IsZero() {
		return nil, fmt.Errorf("%w: origin, destination and departureDate are required", domain.ErrValidation)
	}

	from := startOfDay(departureDate)
	to := from.AddDate(0, 0, 1)

	if s.cache != nil {
		if cached, err := s.cache.GetRoutes(ctx, origin, destination, from); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WarnContext(ctx, "route cache read failed", "error", err)
		}
	}

	direct, err := s.repo.FindByOriginDestinationWindow(ctx, origin, destination, from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(direct, func(i, j int) bool {
		return direct[i].DepartureTime.Before(direct[j].DepartureTime)
	})

	transit, err := s.transitRoutes(ctx, origin, destination, from, to)
	if err != nil {
		return nil, err
	}

	result := &domain.RouteSearchResult{DirectFlights: direct, TransitRoutes: transit}
	if s.cache != nil {
		if err := s.cache.SetRoutes(ctx, origin, destination, from, result); err != nil {
			s.log.WarnContext(ctx, "route cache write failed", "error", err)
		}
	}

	s.log.DebugContext(ctx, "routes searched",
		"origin", origin, "destination", destination, "date", from.Format(time.DateOnly),
		"direct", len(direct), "transit", len(transit))
	return result, nil
}

func (s *FlightService) transitRoutes(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.TransitRoute, error) {
	firstLegs, err := s.repo.FindByOriginWindow(ctx, origin, destination, from, to)
	if err != nil {
		return nil, err
	}

	routes := make([]domain.TransitRoute, 0)
	for _, first := range firstLegs {
		connections, err := s.repo.FindByOriginDestinationWindow(ctx, first.Destination, destination, first.ArrivalTime, first.ArrivalTime.Add(ConnectionWindow))
		if err != nil {
			return nil, err
		}
		for _, second := range connections {
			routes = append(routes, domain.NewTransitRoute(first, second))
		}
	}

	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.TotalDuration != b.TotalDuration {
			return a.TotalDuration < b.TotalDuration
		}
		if !a.FirstFlight.DepartureTime.Equal(b.FirstFlight.DepartureTime) {
			return a.FirstFlight.DepartureTime.Before(b.FirstFlight.DepartureTime)
		}
		if a.FirstFlight.FlightID != b.FirstFlight.FlightID {
			return a.FirstFlight.FlightID < b.FirstFlight.FlightID
		}
		return a.SecondFlight.FlightID < b.SecondFlight.FlightID
	})

	if len(routes) > MaxTransitRoutes {
		routes = routes[:MaxTransitRoutes]
	}
	return routes, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *FlightService) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WarnContext(ctx, "flight cache read failed", "error", err)
		}
	}

	flights, err := s.repo.List(ctx, ListLimit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.WarnContext(ctx, "flight cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	flight := &domain.Flight{
		FlightID:      strings.TrimSpace(input.FlightID),
		FlightNumber:  strings.TrimSpace(input.FlightNumber),
		AirlineName:   strings.TrimSpace(input.AirlineName),
		Origin:        strings.TrimSpace(input.Origin),
		Destination:   strings.TrimSpace(input.Destination),
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
	}
	if err := validateFlight(flight); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.WarnContext(ctx, "flight cache invalidation failed", "error", err)
		}
	}

	s.log.InfoContext(ctx, "flight created", "flight_id", flight.FlightID, "origin", flight.Origin, "destination", flight.Destination)
	return flight, nil
}

func validateFlight(f *domain.Flight) error {
	var missing []string
	for name, v := range map[string]string{
		"flightId":     f.FlightID,
		"flightNumber": f.FlightNumber,
		"airlineName":  f.AirlineName,
		"origin":       f.Origin,
		"destination":  f.Destination,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if f.DepartureTime.IsZero() {
		missing = append(missing, "departureDateTime")
	}
	if f.ArrivalTime.IsZero() {
		missing = append(missing, "arrivalDateTime")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if f.Origin == f.Destination {
		return fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	}
	if f.Duration() <= 0 {
		return fmt.Errorf("%w: arrival must be after departure", domain.ErrValidation)
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
