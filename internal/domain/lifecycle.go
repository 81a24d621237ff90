package domain

import "fmt"

type Action string

const (
	ActionDepart  Action = "depart"
	ActionArrive  Action = "arrive"
	ActionDeliver Action = "deliver"
	ActionCancel  Action = "cancel"
)

type rule struct {
	from  []BookingStatus
	to    BookingStatus
	notes string
}

// lifecycle is the booking state machine. BOOKED is initial,
// DELIVERED and CANCELLED are terminal.
var lifecycle = map[Action]rule{
	ActionDepart:  {from: []BookingStatus{BookingStatusBooked}, to: BookingStatusDeparted, notes: "Package departed"},
	ActionArrive:  {from: []BookingStatus{BookingStatusDeparted}, to: BookingStatusArrived, notes: "Package arrived"},
	ActionDeliver: {from: []BookingStatus{BookingStatusArrived}, to: BookingStatusDelivered, notes: "Package delivered successfully"},
	ActionCancel:  {from: []BookingStatus{BookingStatusBooked, BookingStatusDeparted}, to: BookingStatusCancelled, notes: "Booking cancelled"},
}

// Next resolves the status reached by applying action to current.
// It fails with ErrInvalidState when the action is not legal from current.
func Next(current BookingStatus, action Action) (BookingStatus, error) {
	r, ok := lifecycle[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if IsTerminal(current) {
		return "", fmt.Errorf("%w: booking is already %s", ErrInvalidState, current)
	}
	for _, s := range r.from {
		if s == current {
			return r.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s booking in status %s", ErrInvalidState, action, current)
}

// EventNotes is the timeline description recorded for action.
func EventNotes(action Action) string {
	return lifecycle[action].notes
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status BookingStatus) bool {
	return status == BookingStatusDelivered || status == BookingStatusCancelled
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingStatusBooked, BookingStatusDeparted, BookingStatusArrived, BookingStatusDelivered, BookingStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, s)
}
