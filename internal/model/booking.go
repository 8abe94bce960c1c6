package model

import (
	"errors"
	"time"
)

// Booking statuses. Only pending and confirmed bookings hold a room.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// ActiveBookingStatuses lists the statuses that block a room's dates.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed}

var (
	ErrInvalidStay     = errors.New("Check out date must be after check in date.")
	ErrNotCancellable  = errors.New("Only pending or confirmed bookings can be cancelled")
	ErrRoomUnavailable = errors.New("This room is not available for the selected dates.")
)

// Booking is a reservation of one room for a half-open range of nights.
type Booking struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user"`
	UserName        string    `json:"user_name"`
	RoomID          uint64    `json:"room"`
	RoomName        string    `json:"room_name"`
	HomestayID      uint64    `json:"homestay"`
	HomestayName    string    `json:"homestay_name"`
	CheckInDate     Date      `json:"check_in_date"`
	CheckOutDate    Date      `json:"check_out_date"`
	NumberOfGuests  int       `json:"number_of_guests"`
	SpecialRequests string    `json:"special_requests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"`
	BookingDate     time.Time `json:"booking_date"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Stay returns the booked date range.
func (b *Booking) Stay() Stay {
	return Stay{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
}

// IsActive reports whether the booking still blocks the room.
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// Cancel moves a pending or confirmed booking to cancelled.
func (b *Booking) Cancel() error {
	if !b.IsActive() {
		return ErrNotCancellable
	}
	b.Status = BookingCancelled
	return nil
}

// PriceIfMissing fills TotalPriceCents from the nightly rate unless a
// total was already set. Existing totals are never recomputed.
func (b *Booking) PriceIfMissing(perNightCents int64) {
	if b.TotalPriceCents == 0 {
		b.TotalPriceCents = TotalPriceCents(b.Stay().Nights(), perNightCents)
	}
	b.TotalPrice = CentsToAmount(b.TotalPriceCents)
}

func IsActiveStatus(s string) bool {
	return s == BookingPending || s == BookingConfirmed
}

func ValidStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Stay is a half-open interval of nights [CheckIn, CheckOut).
type Stay struct {
	CheckIn  Date
	CheckOut Date
}

// Validate rejects empty and inverted ranges.
func (s Stay) Validate() error {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() || !s.CheckOut.After(s.CheckIn.Time) {
		return ErrInvalidStay
	}
	return nil
}

// Nights is the number of whole days between check-in and check-out.
func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn.Time).Hours() / 24)
}

// Overlaps reports whether two stays share at least one night. A stay that
// ends on the day another starts does not overlap it.
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn.Before(o.CheckOut.Time) && o.CheckIn.Before(s.CheckOut.Time)
}

// Available reports whether stay fits around existing bookings of the same
// room. Bookings whose ID equals exclude are ignored so that an edited
// booking does not collide with itself.
func Available(stay Stay, existing []Booking, exclude uint64) bool {
	for i := range existing {
		b := &existing[i]
		if b.ID == exclude && exclude != 0 {
			continue
		}
		if b.IsActive() && stay.Overlaps(b.Stay()) {
			return false
		}
	}
	return true
}

// TotalPriceCents is nights multiplied by the nightly rate.
func TotalPriceCents(nights int, perNightCents int64) int64 {
	if nights <= 0 {
		return 0
	}
	return int64(nights) * perNightCents
}
