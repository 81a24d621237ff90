package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/aircargo/internal/kafka"
)

// Sender delivers shipment status notifications to the structured log.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.log.InfoContext(ctx, "notify shipper",
		"ref_id", event.RefID,
		"status", event.Status,
		"message", Message(event),
	)
	return nil
}

// Message renders the human readable notification for event.
func Message(event kafka.BookingEvent) string {
	switch event.Status {
	case "BOOKED":
		return fmt.Sprintf("Booking %s confirmed for %s to %s", event.RefID, event.Origin, event.Destination)
	case "DEPARTED":
		if event.FlightInfo != "" {
			return fmt.Sprintf("Shipment %s departed %s on %s", event.RefID, event.Location, event.FlightInfo)
		}
		return fmt.Sprintf("Shipment %s departed %s", event.RefID, event.Location)
	case "ARRIVED":
		return fmt.Sprintf("Shipment %s arrived at %s", event.RefID, event.Location)
	case "DELIVERED":
		return fmt.Sprintf("Shipment %s delivered at %s", event.RefID, event.Location)
	case "CANCELLED":
		return fmt.Sprintf("Booking %s was cancelled", event.RefID)
	default:
		return fmt.Sprintf("Booking %s is now %s", event.RefID, event.Status)
	}
}
