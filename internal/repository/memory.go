package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

// MemoryFlightRepository is an in-process flight catalog.
type MemoryFlightRepository struct {
	mu      sync.RWMutex
	flights map[string]domain.Flight
	now     func() time.Time
}

func NewMemoryFlightRepository(seed ...domain.Flight) *MemoryFlightRepository {
	r := &MemoryFlightRepository{
		flights: make(map[string]domain.Flight, len(seed)),
		now:     time.Now,
	}
	for _, f := range seed {
		r.flights[f.FlightID] = f
	}
	return r
}

func (r *MemoryFlightRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Flight, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if f, ok := r.flights[id]; ok {
			result = append(result, f)
		}
	}
	sortByDeparture(result)
	return result, nil
}

func (r *MemoryFlightRepository) FindByOriginDestinationWindow(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	return r.filter(ctx, func(f domain.Flight) bool {
		return f.Origin == origin && f.Destination == destination && inWindow(f.DepartureTime, from, to)
	})
}

func (r *MemoryFlightRepository) FindByOriginWindow(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error) {
	return r.filter(ctx, func(f domain.Flight) bool {
		return f.Origin == origin && f.Destination != excludeDestination && inWindow(f.DepartureTime, from, to)
	})
}

func (r *MemoryFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

func (r *MemoryFlightRepository) List(ctx context.Context, limit int) ([]domain.Flight, error) {
	flights, err := r.filter(ctx, func(domain.Flight) bool { return true })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(flights) > limit {
		flights = flights[:limit]
	}
	return flights, nil
}

func (r *MemoryFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flights[flight.FlightID]; ok {
		return domain.ErrFlightExists
	}
	now := r.now()
	flight.CreatedAt = now
	flight.UpdatedAt = now
	r.flights[flight.FlightID] = *flight
	return nil
}

func (r *MemoryFlightRepository) filter(ctx context.Context, keep func(domain.Flight) bool) ([]domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Flight, 0)
	for _, f := range r.flights {
		if keep(f) {
			result = append(result, f)
		}
	}
	sortByDeparture(result)
	return result, nil
}

// [from, to)
func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func sortByDeparture(flights []domain.Flight) {
	sort.Slice(flights, func(i, j int) bool {
		if !flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].DepartureTime.Before(flights[j].DepartureTime)
		}
		return flights[i].FlightID < flights[j].FlightID
	})
}

// MemoryBookingRepository keeps bookings in a map guarded by a mutex.
// Every value handed out is a copy, so readers never observe a partial write.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[string]*domain.Booking)}
}

func (r *MemoryBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.RefID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRefID, booking.RefID)
	}
	r.bookings[booking.RefID] = booking.Clone()
	return nil
}

func (r *MemoryBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[refID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return b.Clone(), nil
}

func (r *MemoryBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	bookings := make([]domain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		bookings = append(bookings, *b.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].RefID > bookings[j].RefID
	})
	return bookings, nil
}

func (r *MemoryBookingRepository) AtomicUpdate(ctx context.Context, refID string, t domain.Transition) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[refID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status != t.From {
		return nil, fmt.Errorf("%w: booking %s is no longer %s", domain.ErrConflict, refID, t.From)
	}
	updated := b.Clone()
	t.Apply(updated)
	r.bookings[refID] = updated
	return updated.Clone(), nil
}

var (
	_ FlightRepository  = (*MemoryFlightRepository)(nil)
	_ BookingRepository = (*MemoryBookingRepository)(nil)
)
