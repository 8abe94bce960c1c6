// Package queue carries booking events over RabbitMQ: the publisher used by
// the booking service and the consumer that writes the booking log.
package queue

import (
	"time"

	"github.com/dholimara/homestay-api/internal/model"
)

// Queue names. Both are durable.
const (
	BookingCreatedQueue   = "booking.created"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent is published when a booking is created or cancelled. It
// holds enough for consumers to log or notify without reading the database.
type BookingEvent struct {
	Type             string `json:"type"`
	BookingID        uint64 `json:"booking_id"`
	UserID           uint64 `json:"user_id"`
	RoomID           uint64 `json:"room_id"`
	RoomName         string `json:"room_name"`
	HomestayID       uint64 `json:"homestay_id"`
	HomestayName     string `json:"homestay_name"`
	CheckInDate      string `json:"check_in_date"`
	CheckOutDate     string `json:"check_out_date"`
	Nights           int    `json:"nights"`
	Guests           int    `json:"number_of_guests"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	Status           string `json:"status"`
	OccurredAt       string `json:"occurred_at"`
}

// NewBookingEvent snapshots b for the given queue.
func NewBookingEvent(queue string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:             queue,
		BookingID:        b.ID,
		UserID:           b.UserID,
		RoomID:           b.RoomID,
		RoomName:         b.RoomName,
		HomestayID:       b.HomestayID,
		HomestayName:     b.HomestayName,
		CheckInDate:      b.CheckInDate.String(),
		CheckOutDate:     b.CheckOutDate.String(),
		Nights:           b.Stay().Nights(),
		Guests:           b.NumberOfGuests,
		TotalAmountCents: b.TotalPriceCents,
		Status:           b.Status,
		OccurredAt:       at.UTC().Format(time.RFC3339),
	}
}
