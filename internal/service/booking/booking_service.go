package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/google/uuid"
)

// maxRefIDAttempts bounds regeneration after a refId collision on insert.
const maxRefIDAttempts = 3

// maxFlightLegs: a booking is direct or one-stop.
const maxFlightLegs = 2

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, refID string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	Depart(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Arrive(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Deliver(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Cancel(ctx context.Context, refID string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type CreateBookingInput struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Pieces      int      `json:"pieces"`
	WeightKg    float64  `json:"weightKg"`
	FlightIDs   []string `json:"flightIds"`
}

// TransitionInput carries the optional overrides of a status update.
// Empty fields fall back to the booking's origin or destination.
type TransitionInput struct {
	Location   string `json:"location"`
	FlightInfo string `json:"flightInfo"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	clock              Clock
	newRefID           func(now time.Time) string
	log                *slog.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(clock Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = clock
	}
}

func WithRefIDGenerator(gen func(now time.Time) string) BookingServiceOption {
	return func(s *BookingService) {
		s.newRefID = gen
	}
}

func WithLogger(log *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

// NewBookingService wires the lifecycle manager. producer may be nil, in
// which case no events are published.
func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		producer:     producer,
		bookingTopic: bookingTopic,
		clock:        SystemClock{},
		newRefID:     NewRefID,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// NewRefID returns REF-<unix millis>-<8 random hex chars>.
func NewRefID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("REF-%d-%s", now.UnixMilli(), strings.ToUpper(random))
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	origin := strings.TrimSpace(input.Origin)
	destination := strings.TrimSpace(input.Destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", domain.ErrValidation)
	}
	if input.Pieces <= 0 {
		return nil, fmt.Errorf("%w: pieces must be positive", domain.ErrValidation)
	}
	if input.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weightKg must be positive", domain.ErrValidation)
	}
	if len(input.FlightIDs) > maxFlightLegs {
		return nil, fmt.Errorf("%w: at most %d flights per booking", domain.ErrValidation, maxFlightLegs)
	}
	if err := s.checkFlights(ctx, input.FlightIDs); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	booking := &domain.Booking{
		Origin:      origin,
		Destination: destination,
		Pieces:      input.Pieces,
		WeightKg:    input.WeightKg,
		FlightIDs:   append([]string{}, input.FlightIDs...),
		Status:      domain.BookingStatusBooked,
		Timeline:    []domain.TimelineEvent{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var err error
	for attempt := 1; attempt <= maxRefIDAttempts; attempt++ {
		booking.RefID = s.newRefID(now)
		err = s.bookings.Insert(ctx, booking)
		if !errors.Is(err, domain.ErrDuplicateRefID) {
			break
		}
		s.log.WarnContext(ctx, "booking reference collision, regenerating", "ref_id", booking.RefID, "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking created", "ref_id", booking.RefID, "origin", origin, "destination", destination)
	s.publish(ctx, "booking_created", booking, domain.TimelineEvent{Location: origin, Timestamp: now})
	return booking, nil
}

func (s *BookingService) checkFlights(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.flights.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(found))
	for _, f := range found {
		known[f.FlightID] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unknown flight ids %s", domain.ErrInvalidReference, strings.Join(missing, ", "))
	}
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, refID string) (*domain.Booking, error) {
	return s.bookings.GetByRefID(ctx, refID)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) Depart(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.transition(ctx, refID, domain.ActionDepart, input)
}

func (s *BookingService) Arrive(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.transition(ctx, refID, domain.ActionArrive, TransitionInput{Location: input.Location})
}

func (s *BookingService) Deliver(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.transition(ctx, refID, domain.ActionDeliver, TransitionInput{Location: input.Location})
}

// Cancel always records the booking origin as the event location.
func (s *BookingService) Cancel(ctx context.Context, refID string) (*domain.Booking, error) {
	return s.transition(ctx, refID, domain.ActionCancel, TransitionInput{})
}

func (s *BookingService) transition(ctx context.Context, refID string, action domain.Action, input TransitionInput) (*domain.Booking, error) {
	current, err := s.bookings.GetByRefID(ctx, refID)
	if err != nil {
		return nil, err
	}
	next, err := domain.Next(current.Status, action)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	event := domain.TimelineEvent{
		EventType:  next,
		Location:   eventLocation(current, action, input.Location),
		FlightInfo: input.FlightInfo,
		Notes:      domain.EventNotes(action),
		Timestamp:  now,
	}

	updated, err := s.bookings.AtomicUpdate(ctx, refID, domain.Transition{
		From:  current.Status,
		To:    next,
		Event: event,
		At:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking status changed", "ref_id", refID, "from", current.Status, "to", next)
	s.publish(ctx, "booking_"+strings.ToLower(string(next)), updated, event)
	return updated, nil
}

func eventLocation(b *domain.Booking, action domain.Action, override string) string {
	switch action {
	case domain.ActionCancel:
		return b.Origin
	case domain.ActionDepart:
		if override != "" {
			return override
		}
		return b.Origin
	default:
		if override != "" {
			return override
		}
		return b.Destination
	}
}

// publish is best effort: a broker outage never fails a booking operation.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, event domain.TimelineEvent) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	payload := kafka.BookingEvent{
		Type:        eventType,
		RefID:       booking.RefID,
		Status:      string(booking.Status),
		Origin:      booking.Origin,
		Destination: booking.Destination,
		Location:    event.Location,
		FlightInfo:  event.FlightInfo,
		Notes:       event.Notes,
		OccurredAt:  event.Timestamp,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.RefID, payload); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking event", "type", eventType, "ref_id", booking.RefID, "error", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.RefID, payload); err != nil {
			s.log.WarnContext(ctx, "failed to publish notification", "type", eventType, "ref_id", booking.RefID, "error", err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
