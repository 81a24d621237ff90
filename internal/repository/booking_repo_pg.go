package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository persists bookings. AtomicUpdate is a compare-and-swap on
// (refId, status): it fails with domain.ErrConflict when the stored status no
// longer matches the expected one.
type BookingRepository interface {
	Insert(ctx context.Context, booking *domain.Booking) error
	GetByRefID(ctx context.Context, refID string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	AtomicUpdate(ctx context.Context, refID string, transition domain.Transition) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `ref_id, origin, destination, pieces, weight_kg, flight_ids, status, timeline, created_at, updated_at`

type timelineRecord struct {
	EventType  string    `json:"eventType"`
	Location   string    `json:"location"`
	FlightInfo string    `json:"flightInfo,omitempty"`
	Notes      string    `json:"notes"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *PGBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	timeline, err := encodeTimeline(booking.Timeline)
	if err != nil {
		return err
	}
	flightIDs := booking.FlightIDs
	if flightIDs == nil {
		flightIDs = []string{}
	}

	_, err = r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)`,
		booking.RefID, booking.Origin, booking.Destination, booking.Pieces, booking.WeightKg,
		flightIDs, booking.Status, timeline, booking.CreatedAt, booking.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRefID, booking.RefID)
	}
	return err
}

func (r *PGBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ref_id=$1`, refID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, ref_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) AtomicUpdate(ctx context.Context, refID string, t domain.Transition) (*domain.Booking, error) {
	event, err := encodeTimeline([]domain.TimelineEvent{t.Event})
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$3, timeline = timeline || $4::jsonb, updated_at=$5
		WHERE ref_id=$1 AND status=$2
		RETURNING `+bookingColumns, refID, t.From, t.To, event, t.At)
	b, err := scanBooking(row)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE ref_id=$1)`, refID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrBookingNotFound
	}
	return nil, fmt.Errorf("%w: booking %s is no longer %s", domain.ErrConflict, refID, t.From)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b        domain.Booking
		status   string
		timeline []byte
	)
	if err := row.Scan(&b.RefID, &b.Origin, &b.Destination, &b.Pieces, &b.WeightKg, &b.FlightIDs, &status, &timeline, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.RefID, err)
	}
	b.Status = st

	events, err := decodeTimeline(timeline)
	if err != nil {
		return nil, fmt.Errorf("decode timeline of %s: %w", b.RefID, err)
	}
	b.Timeline = events
	return &b, nil
}

func encodeTimeline(events []domain.TimelineEvent) (string, error) {
	records := make([]timelineRecord, 0, len(events))
	for _, e := range events {
		records = append(records, timelineRecord{
			EventType:  string(e.EventType),
			Location:   e.Location,
			FlightInfo: e.FlightInfo,
			Notes:      e.Notes,
			Timestamp:  e.Timestamp,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode timeline: %w", err)
	}
	return string(data), nil
}

func decodeTimeline(data []byte) ([]domain.TimelineEvent, error) {
	if len(data) == 0 {
		return []domain.TimelineEvent{}, nil
	}
	var records []timelineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	events := make([]domain.TimelineEvent, 0, len(records))
	for _, rec := range records {
		events = append(events, domain.TimelineEvent{
			EventType:  domain.BookingStatus(rec.EventType),
			Location:   rec.Location,
			FlightInfo: rec.FlightInfo,
			Notes:      rec.Notes,
			Timestamp:  rec.Timestamp,
		})
	}
	return events, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
