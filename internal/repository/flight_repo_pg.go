package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlightRepository is the read side of the flight catalog used by search and
// booking creation, plus the admin operations used to populate it.
type FlightRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Flight, error)
	FindByOriginDestinationWindow(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error)
	FindByOriginWindow(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	List(ctx context.Context, limit int) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `flight_id, flight_number, airline_name, origin, destination, departure_time, arrival_time, created_at, updated_at`

func (r *PGFlightRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Flight, error) {
	if len(ids) == 0 {
		return []domain.Flight{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id = ANY($1) ORDER BY departure_time`, ids)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) FindByOriginDestinationWindow(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_time >= $3 AND departure_time < $4
		ORDER BY departure_time`, origin, destination, from, to)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) FindByOriginWindow(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination <> $2 AND departure_time >= $3 AND departure_time < $4
		ORDER BY departure_time`, origin, excludeDestination, from, to)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id=$1`, id)
	f, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context, limit int) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_id, flight_number, airline_name, origin, destination, departure_time, arrival_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		flight.FlightID, flight.FlightNumber, flight.AirlineName, flight.Origin, flight.Destination, flight.DepartureTime, flight.ArrivalTime).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrFlightExists
	}
	return err
}

func scanFlight(row pgx.Row) (domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.FlightID, &f.FlightNumber, &f.AirlineName, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ FlightRepository = (*PGFlightRepository)(nil)
