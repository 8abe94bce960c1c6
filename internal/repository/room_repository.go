package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dholimara/homestay-api/internal/model"
)

// RoomRepo provides CRUD for rooms and the availability query.
type RoomRepo struct{ db *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// RoomFilter narrows List. Zero values mean "any".
type RoomFilter struct {
	HomestayID    uint64
	Capacity      int
	AvailableOnly bool
	IsAvailable   *bool
	Search        string // name, description, amenities
}

const roomColumns = `r.id, r.homestay_id, f.name, r.name, r.description, r.capacity, r.price_per_night_cents,
	r.featured_image, r.amenities, r.is_available, r.created_at, r.updated_at`

const roomFrom = " FROM rooms r JOIN homestay_families f ON f.id = r.homestay_id"

func scanRoom(s scanner) (*model.Room, error) {
	var rm model.Room
	err := s.Scan(&rm.ID, &rm.HomestayID, &rm.HomestayName, &rm.Name, &rm.Description, &rm.Capacity,
		&rm.PricePerNightCents, &rm.FeaturedImage, &rm.Amenities, &rm.IsAvailable, &rm.CreatedAt, &rm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	rm.SyncPrice()
	return &rm, nil
}

func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]model.Room, error) {
	var (
		where []string
		args  []any
	)
	if f.AvailableOnly {
		where = append(where, "r.is_available = 1")
	}
	if f.IsAvailable != nil {
		where = append(where, "r.is_available = ?")
		args = append(args, *f.IsAvailable)
	}
	if f.HomestayID != 0 {
		where = append(where, "r.homestay_id = ?")
		args = append(args, f.HomestayID)
	}
	if f.Capacity > 0 {
		where = append(where, "r.capacity = ?")
		args = append(args, f.Capacity)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		clause, a := searchClause(s, "r.name", "r.description", "r.amenities")
		where = append(where, clause)
		args = append(args, a...)
	}
	q := "SELECT " + roomColumns + roomFrom
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY r.id"
	return r.query(ctx, q, args...)
}

// ListAvailable returns bookable rooms with no pending or confirmed booking
// overlapping stay. Capacity filtering is left to the caller.
func (r *RoomRepo) ListAvailable(ctx context.Context, stay model.Stay) ([]model.Room, error) {
	q := "SELECT " + roomColumns + roomFrom + `
		WHERE r.is_available = 1 AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = r.id
			  AND b.status IN (` + placeholders(len(model.ActiveBookingStatuses)) + `)
			  AND b.check_in_date < ? AND ? < b.check_out_date
		)
		ORDER BY r.id`
	args := activeStatusArgs()
	args = append(args, stay.CheckOut, stay.CheckIn)
	return r.query(ctx, q, args...)
}

// GetByID loads one room. With availableOnly a room that is switched off
// reads as not found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64, availableOnly bool) (*model.Room, error) {
	q := "SELECT " + roomColumns + roomFrom + " WHERE r.id = ?"
	if availableOnly {
		q += " AND r.is_available = 1"
	}
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	images, err := roomGallery.load(ctx, r.db, []uint64{rm.ID})
	if err != nil {
		return nil, err
	}
	rm.Gallery = nonNilImages(images[rm.ID])
	return rm, nil
}

func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	var id uint64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (homestay_id, name, description, capacity, price_per_night_cents, featured_image, amenities, is_available)
			 VALUES (?,?,?,?,?,?,?,?)`,
			rm.HomestayID, rm.Name, rm.Description, rm.Capacity, rm.PricePerNightCents,
			rm.FeaturedImage, rm.Amenities, rm.IsAvailable)
		if err != nil {
			return mapWriteError(err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(lastID)
		return roomGallery.replace(ctx, tx, id, rm.GalleryIDs)
	})
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, id, false)
	if err != nil {
		return err
	}
	*rm = *created
	return nil
}

// Update writes every column of rm. Existing bookings keep their totals
// when the nightly rate changes.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := lockRoom(ctx, tx, rm.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE rooms SET homestay_id=?, name=?, description=?, capacity=?, price_per_night_cents=?,
			 featured_image=?, amenities=?, is_available=? WHERE id=?`,
			rm.HomestayID, rm.Name, rm.Description, rm.Capacity, rm.PricePerNightCents,
			rm.FeaturedImage, rm.Amenities, rm.IsAvailable, rm.ID); err != nil {
			return mapWriteError(err)
		}
		if rm.GalleryIDs == nil {
			return nil
		}
		return roomGallery.replace(ctx, tx, rm.ID, rm.GalleryIDs)
	})
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, rm.ID, false)
	if err != nil {
		return err
	}
	*rm = *updated
	return nil
}

func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// byHomestays groups the rooms of the given homestays by homestay id.
func (r *RoomRepo) byHomestays(ctx context.Context, ids []uint64) (map[uint64][]model.Room, error) {
	out := make(map[uint64][]model.Room, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rooms, err := r.query(ctx,
		"SELECT "+roomColumns+roomFrom+" WHERE r.homestay_id IN ("+placeholders(len(ids))+") ORDER BY r.id", args...)
	if err != nil {
		return nil, err
	}
	for _, rm := range rooms {
		out[rm.HomestayID] = append(out[rm.HomestayID], rm)
	}
	return out, nil
}

// query runs a room SELECT and attaches gallery images.
func (r *RoomRepo) query(ctx context.Context, q string, args ...any) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]uint64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	images, err := roomGallery.load(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Gallery = nonNilImages(images[out[i].ID])
	}
	return out, nil
}

// lockRoom reads a room with a row lock held until tx ends. Every booking
// write for the room serializes on this lock.
func lockRoom(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	return scanRoom(tx.QueryRowContext(ctx,
		"SELECT "+roomColumns+roomFrom+" WHERE r.id = ? FOR UPDATE OF r", id))
}

func activeStatusArgs() []any {
	args := make([]any, 0, len(model.ActiveBookingStatuses)+2)
	for _, s := range model.ActiveBookingStatuses {
		args = append(args, s)
	}
	return args
}
