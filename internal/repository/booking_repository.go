package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dholimara/homestay-api/internal/model"
)

// BookingRepo stores bookings. Writes that change which nights a room is
// held for go through Reserve and Reschedule, which serialize on a row lock
// of the room so that two overlapping requests cannot both succeed.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows List. A nil UserID lists every user's bookings.
type BookingFilter struct {
	UserID       *uint64
	Status       string
	RoomID       uint64
	CheckInDate  model.Date
	CheckOutDate model.Date
}

// Decide inspects the locked room and the active bookings that overlap the
// requested stay and returns an error to abort the write.
type Decide func(room *model.Room, overlapping []model.Booking) error

const bookingColumns = `b.id, b.user_id, u.first_name, u.last_name, u.username, b.room_id, r.name, r.homestay_id, f.name,
	b.check_in_date, b.check_out_date, b.number_of_guests, COALESCE(b.special_requests,''),
	b.total_price_cents, b.status, b.booking_date, b.updated_at`

const bookingFrom = ` FROM bookings b
	JOIN users u ON u.id = b.user_id
	JOIN rooms r ON r.id = b.room_id
	JOIN homestay_families f ON f.id = r.homestay_id`

func scanBooking(s scanner) (*model.Booking, error) {
	var (
		b                       model.Booking
		first, last, username string
	)
	err := s.Scan(&b.ID, &b.UserID, &first, &last, &username, &b.RoomID, &b.RoomName, &b.HomestayID, &b.HomestayName,
		&b.CheckInDate, &b.CheckOutDate, &b.NumberOfGuests, &b.SpecialRequests,
		&b.TotalPriceCents, &b.Status, &b.BookingDate, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.UserName = model.DisplayName(first, last, username)
	b.TotalPrice = model.CentsToAmount(b.TotalPriceCents)
	return &b, nil
}

func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		where = append(where, "b.user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, f.Status)
	}
	if f.RoomID != 0 {
		where = append(where, "b.room_id = ?")
		args = append(args, f.RoomID)
	}
	if !f.CheckInDate.IsZero() {
		where = append(where, "b.check_in_date = ?")
		args = append(args, f.CheckInDate)
	}
	if !f.CheckOutDate.IsZero() {
		where = append(where, "b.check_out_date = ?")
		args = append(args, f.CheckOutDate)
	}
	q := "SELECT " + bookingColumns + bookingFrom
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY b.booking_date DESC, b.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return getBooking(ctx, r.db, id)
}

// Reserve inserts b if decide accepts it. The room row stays locked from
// the overlap read until commit.
func (r *BookingRepo) Reserve(ctx context.Context, b *model.Booking, decide Decide) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		room, overlapping, err := lockAndCollect(ctx, tx, b.RoomID, b.Stay(), 0)
		if err != nil {
			return err
		}
		if err := decide(room, overlapping); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (user_id, room_id, check_in_date, check_out_date, number_of_guests, special_requests, total_price_cents, status)
			 VALUES (?,?,?,?,?,?,?,?)`,
			b.UserID, b.RoomID, b.CheckInDate, b.CheckOutDate, b.NumberOfGuests,
			nullString(b.SpecialRequests), b.TotalPriceCents, b.Status)
		if err != nil {
			return mapWriteError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err := getBooking(ctx, tx, uint64(id))
		if err != nil {
			return err
		}
		*b = *created
		return nil
	})
}

// Reschedule updates the editable columns of b under the same locking
// rules as Reserve. The booking itself is excluded from the overlap set.
// Status and total price are left untouched.
func (r *BookingRepo) Reschedule(ctx context.Context, b *model.Booking, decide Decide) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		room, overlapping, err := lockAndCollect(ctx, tx, b.RoomID, b.Stay(), b.ID)
		if err != nil {
			return err
		}
		if err := decide(room, overlapping); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET room_id=?, check_in_date=?, check_out_date=?, number_of_guests=?, special_requests=?
			 WHERE id=?`,
			b.RoomID, b.CheckInDate, b.CheckOutDate, b.NumberOfGuests, nullString(b.SpecialRequests), b.ID); err != nil {
			return mapWriteError(err)
		}
		updated, err := getBooking(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		*b = *updated
		return nil
	})
}

// Cancel moves a pending or confirmed booking to cancelled. The status
// check and the write are a single statement, so of two concurrent cancels
// exactly one succeeds; the other gets model.ErrNotCancellable.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) error {
	args := append([]any{model.BookingCancelled, id}, activeStatusArgs()...)
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status IN ("+placeholders(len(model.ActiveBookingStatuses))+")", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return model.ErrNotCancellable
	}
	return nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func getBooking(ctx context.Context, q querier, id uint64) (*model.Booking, error) {
	return scanBooking(q.QueryRowContext(ctx, "SELECT "+bookingColumns+bookingFrom+" WHERE b.id = ?", id))
}

// lockAndCollect locks the room and loads the active bookings on it whose
// nights intersect stay, skipping exclude.
func lockAndCollect(ctx context.Context, tx *sql.Tx, roomID uint64, stay model.Stay, exclude uint64) (*model.Room, []model.Booking, error) {
	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return nil, nil, err
	}
	args := activeStatusArgs()
	args = append(args, roomID, exclude, stay.CheckOut, stay.CheckIn)
	rows, err := tx.QueryContext(ctx,
		`SELECT id, check_in_date, check_out_date, status FROM bookings
		 WHERE status IN (`+placeholders(len(model.ActiveBookingStatuses))+`)
		   AND room_id = ? AND id <> ?
		   AND check_in_date < ? AND ? < check_out_date`, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var overlapping []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.CheckInDate, &b.CheckOutDate, &b.Status); err != nil {
			return nil, nil, err
		}
		b.RoomID = roomID
		overlapping = append(overlapping, b)
	}
	return room, overlapping, rows.Err()
}
