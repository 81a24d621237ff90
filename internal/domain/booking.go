package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusDeparted  BookingStatus = "DEPARTED"
	BookingStatusArrived   BookingStatus = "ARRIVED"
	BookingStatusDelivered BookingStatus = "DELIVERED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	RefID       string
	Origin      string
	Destination string
	Pieces      int
	WeightKg    float64
	FlightIDs   []string
	Status      BookingStatus
	Timeline    []TimelineEvent
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimelineEvent is one entry of the booking's append-only audit log.
type TimelineEvent struct {
	EventType  BookingStatus
	Location   string
	FlightInfo string
	Notes      string
	Timestamp  time.Time
}

// Clone returns a deep copy so callers never share slices with a store.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.FlightIDs != nil {
		c.FlightIDs = append([]string(nil), b.FlightIDs...)
	}
	if b.Timeline != nil {
		c.Timeline = append([]TimelineEvent(nil), b.Timeline...)
	}
	return &c
}

// LastEvent returns the most recent timeline entry, if any.
func (b *Booking) LastEvent() (TimelineEvent, bool) {
	if len(b.Timeline) == 0 {
		return TimelineEvent{}, false
	}
	return b.Timeline[len(b.Timeline)-1], true
}

// Transition is the conditional mutation applied by a booking store:
// move from From to To and append Event, stamped at At.
type Transition struct {
	From  BookingStatus
	To    BookingStatus
	Event TimelineEvent
	At    time.Time
}

// Apply mutates b in place. The caller is responsible for checking b.Status == t.From.
func (t Transition) Apply(b *Booking) {
	b.Status = t.To
	b.Timeline = append(b.Timeline, t.Event)
	b.UpdatedAt = t.At
}
