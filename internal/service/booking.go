// Package service holds the booking workflow: availability and pricing
// applied under the room lock, ownership checks and lifecycle events.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/queue"
	"github.com/dholimara/homestay-api/internal/repository"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uint64
	Staff  bool
}

func (a Actor) owns(b *model.Booking) bool { return a.Staff || b.UserID == a.UserID }

// BookingStore is the persistence the booking service needs.
type BookingStore interface {
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	Reserve(ctx context.Context, b *model.Booking, decide repository.Decide) error
	Reschedule(ctx context.Context, b *model.Booking, decide repository.Decide) error
	Cancel(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

// RoomStore answers the aggregate availability query.
type RoomStore interface {
	ListAvailable(ctx context.Context, stay model.Stay) ([]model.Room, error)
}

// BookingInput carries the client-writable booking fields.
type BookingInput struct {
	RoomID          uint64
	CheckInDate     model.Date
	CheckOutDate    model.Date
	NumberOfGuests  int
	SpecialRequests string
}

func (in BookingInput) stay() model.Stay {
	return model.Stay{CheckIn: in.CheckInDate, CheckOut: in.CheckOutDate}
}

type BookingService interface {
	List(ctx context.Context, actor Actor, f repository.BookingFilter) ([]model.Booking, error)
	Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error)
	Create(ctx context.Context, actor Actor, in BookingInput) (*model.Booking, error)
	Update(ctx context.Context, actor Actor, id uint64, in BookingInput) (*model.Booking, error)
	Cancel(ctx context.Context, actor Actor, id uint64) (*model.Booking, error)
	Delete(ctx context.Context, actor Actor, id uint64) error
	CheckAvailability(ctx context.Context, stay model.Stay, capacity int) ([]model.Room, error)
}

type bookingService struct {
	bookings  BookingStore
	rooms     RoomStore
	publisher queue.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewBookingService(bookings BookingStore, rooms RoomStore, publisher queue.Publisher, log *logger.Logger) BookingService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &bookingService{
		bookings:  bookings,
		rooms:     rooms,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// List returns the caller's bookings, or every booking for staff.
func (s *bookingService) List(ctx context.Context, actor Actor, f repository.BookingFilter) ([]model.Booking, error) {
	f.UserID = nil
	if !actor.Staff {
		uid := actor.UserID
		f.UserID = &uid
	}
	out, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("failed to list bookings", err)
	}
	return out, nil
}

// Get hides bookings of other users behind a 404.
func (s *bookingService) Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !actor.owns(b) {
		return nil, apperr.NotFound("Booking")
	}
	return b, nil
}

// Create books a room for the caller. The overlap check and the insert run
// under the room lock, so two overlapping requests cannot both succeed.
func (s *bookingService) Create(ctx context.Context, actor Actor, in BookingInput) (*model.Booking, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	b := &model.Booking{
		UserID:          actor.UserID,
		RoomID:          in.RoomID,
		CheckInDate:     in.CheckInDate,
		CheckOutDate:    in.CheckOutDate,
		NumberOfGuests:  in.NumberOfGuests,
		SpecialRequests: in.SpecialRequests,
	}
	err := s.bookings.Reserve(ctx, b, func(room *model.Room, overlapping []model.Booking) error {
		if !model.Available(b.Stay(), overlapping, 0) {
			return unavailable()
		}
		b.Status = model.BookingPending
		b.PriceIfMissing(room.PricePerNightCents)
		return nil
	})
	if err != nil {
		s.logReject("create", actor, in, err)
		return nil, storeError(err)
	}

	s.log.Info("booking created", "booking_id", b.ID, "user_id", b.UserID, "room_id", b.RoomID,
		"check_in", b.CheckInDate.String(), "check_out", b.CheckOutDate.String(), "total_cents", b.TotalPriceCents)
	s.publish(ctx, queue.BookingCreatedQueue, b)
	return b, nil
}

// Update changes room, dates, guests or requests. The booking's own nights
// never count against it. Status and total price stay as stored.
func (s *bookingService) Update(ctx context.Context, actor Actor, id uint64, in BookingInput) (*model.Booking, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	b.RoomID = in.RoomID
	b.CheckInDate = in.CheckInDate
	b.CheckOutDate = in.CheckOutDate
	b.NumberOfGuests = in.NumberOfGuests
	b.SpecialRequests = in.SpecialRequests

	err = s.bookings.Reschedule(ctx, b, func(_ *model.Room, overlapping []model.Booking) error {
		if b.IsActive() && !model.Available(b.Stay(), overlapping, b.ID) {
			return unavailable()
		}
		return nil
	})
	if err != nil {
		s.logReject("update", actor, in, err)
		return nil, storeError(err)
	}
	s.log.Info("booking updated", "booking_id", b.ID, "user_id", actor.UserID)
	return b, nil
}

// Cancel moves a pending or confirmed booking to cancelled.
func (s *bookingService) Cancel(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, storeError(err)
	}
	// a concurrent cancel may have won since the read above
	if err := s.bookings.Cancel(ctx, b.ID); err != nil {
		return nil, storeError(err)
	}
	s.log.Info("booking cancelled", "booking_id", b.ID, "user_id", actor.UserID)
	s.publish(ctx, queue.BookingCancelledQueue, b)
	return b, nil
}

func (s *bookingService) Delete(ctx context.Context, actor Actor, id uint64) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return storeError(err)
	}
	s.log.Info("booking deleted", "booking_id", id, "user_id", actor.UserID)
	return nil
}

// CheckAvailability lists bookable rooms free for the whole stay that sleep
// at least capacity guests.
func (s *bookingService) CheckAvailability(ctx context.Context, stay model.Stay, capacity int) ([]model.Room, error) {
	if err := stay.Validate(); err != nil {
		return nil, apperr.BadRequest("Check-out date must be after check-in date")
	}
	rooms, err := s.rooms.ListAvailable(ctx, stay)
	if err != nil {
		return nil, apperr.Internal("failed to check availability", err)
	}
	return model.FilterByCapacity(rooms, capacity), nil
}

// publish is best effort: a broker outage never fails the booking.
func (s *bookingService) publish(ctx context.Context, q string, b *model.Booking) {
	ev := queue.NewBookingEvent(q, b, s.now())
	if err := s.publisher.Publish(ctx, q, ev); err != nil {
		s.log.Warn("publish booking event failed", "queue", q, "booking_id", b.ID, "error", err)
	}
}

func (s *bookingService) logReject(op string, actor Actor, in BookingInput, err error) {
	if apperr.Is(err, apperr.CodeValidation) {
		s.log.Info("booking rejected", "op", op, "user_id", actor.UserID, "room_id", in.RoomID,
			"check_in", in.CheckInDate.String(), "check_out", in.CheckOutDate.String(), "error", err)
		return
	}
	s.log.Error("booking write failed", "op", op, "user_id", actor.UserID, "room_id", in.RoomID, "error", err)
}

func validateInput(in BookingInput) error {
	fields := map[string]string{}
	if in.RoomID == 0 {
		fields["room"] = "This field is required."
	}
	if in.NumberOfGuests < 1 {
		fields["number_of_guests"] = "Ensure this value is greater than or equal to 1."
	}
	switch {
	case in.CheckInDate.IsZero() || in.CheckOutDate.IsZero():
		if in.CheckInDate.IsZero() {
			fields["check_in_date"] = "This field is required."
		}
		if in.CheckOutDate.IsZero() {
			fields["check_out_date"] = "This field is required."
		}
	case in.stay().Validate() != nil:
		fields["check_out_date"] = model.ErrInvalidStay.Error()
	}
	if len(fields) == 0 {
		return nil
	}
	msg := "Invalid booking"
	if len(fields) == 1 {
		for _, m := range fields {
			msg = m
		}
	}
	return apperr.Validation(msg, fields)
}

func unavailable() error {
	return apperr.Field("room", model.ErrRoomUnavailable.Error())
}

// storeError maps repository sentinels onto API errors.
func storeError(err error) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, repository.ErrBookingNotFound):
		return apperr.NotFound("Booking")
	case errors.Is(err, model.ErrNotCancellable):
		return apperr.Validation(err.Error(), nil)
	case errors.Is(err, repository.ErrRoomNotFound), errors.Is(err, repository.ErrInvalidReference):
		return apperr.Field("room", "Invalid room.")
	}
	return apperr.Internal("booking store failure", err)
}
