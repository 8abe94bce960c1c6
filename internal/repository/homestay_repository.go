package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dholimara/homestay-api/internal/model"
)

// HomestayRepo provides CRUD for homestay families. Reads attach the
// family's gallery images and rooms.
type HomestayRepo struct {
	db    *sql.DB
	rooms *RoomRepo
}

func NewHomestayRepo(db *sql.DB, rooms *RoomRepo) *HomestayRepo {
	return &HomestayRepo{db: db, rooms: rooms}
}

// HomestayFilter narrows List. Search matches name, description and address.
type HomestayFilter struct {
	ActiveOnly bool
	Search     string
}

const homestayColumns = `f.id, f.name, f.head_of_family, f.contact_number, COALESCE(f.email,''), f.description,
	f.address, f.featured_image, COALESCE(f.amenities,''), f.is_active, f.created_at, f.updated_at`

func scanHomestay(s scanner, extra ...any) (*model.HomestayFamily, error) {
	var h model.HomestayFamily
	dest := []any{&h.ID, &h.Name, &h.HeadOfFamily, &h.ContactNumber, &h.Email, &h.Description,
		&h.Address, &h.FeaturedImage, &h.Amenities, &h.IsActive, &h.CreatedAt, &h.UpdatedAt}
	err := s.Scan(append(dest, extra...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHomestayNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HomestayRepo) List(ctx context.Context, f HomestayFilter) ([]model.HomestayFamily, error) {
	var (
		where []string
		args  []any
	)
	if f.ActiveOnly {
		where = append(where, "f.is_active = 1")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		clause, a := searchClause(s, "f.name", "f.description", "f.address")
		where = append(where, clause)
		args = append(args, a...)
	}
	q := "SELECT " + homestayColumns + " FROM homestay_families f"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY f.name, f.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HomestayFamily{}
	for rows.Next() {
		h, err := scanHomestay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attach(ctx, out)
}

// Featured returns the top active homestays by average review rating.
// Homestays without reviews sort last.
func (r *HomestayRepo) Featured(ctx context.Context, limit int) ([]model.HomestayFamily, error) {
	q := "SELECT " + homestayColumns + `,
		(SELECT COUNT(*) FROM rooms r WHERE r.homestay_id = f.id) AS room_count,
		(SELECT AVG(rv.rating) FROM reviews rv WHERE rv.homestay_id = f.id) AS avg_rating
		FROM homestay_families f
		WHERE f.is_active = 1
		ORDER BY avg_rating IS NULL, avg_rating DESC, f.id
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HomestayFamily{}
	for rows.Next() {
		var (
			count int
			avg   sql.NullFloat64
		)
		h, err := scanHomestay(rows, &count, &avg)
		if err != nil {
			return nil, err
		}
		h.RoomCount = &count
		if avg.Valid {
			v := avg.Float64
			h.AvgRating = &v
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, r.attach(ctx, out)
}

// GetByID loads one homestay. With activeOnly an inactive homestay is
// reported as not found.
func (r *HomestayRepo) GetByID(ctx context.Context, id uint64, activeOnly bool) (*model.HomestayFamily, error) {
	q := "SELECT " + homestayColumns + " FROM homestay_families f WHERE f.id = ?"
	if activeOnly {
		q += " AND f.is_active = 1"
	}
	h, err := scanHomestay(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	list := []model.HomestayFamily{*h}
	if err := r.attach(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create inserts h together with its gallery links.
func (r *HomestayRepo) Create(ctx context.Context, h *model.HomestayFamily) error {
	var id uint64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO homestay_families (name, head_of_family, contact_number, email, description, address, featured_image, amenities, is_active)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			h.Name, h.HeadOfFamily, h.ContactNumber, nullString(h.Email), h.Description, h.Address,
			h.FeaturedImage, nullString(h.Amenities), h.IsActive)
		if err != nil {
			return mapWriteError(err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(lastID)
		return familyGallery.replace(ctx, tx, id, h.GalleryIDs)
	})
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, id, false)
	if err != nil {
		return err
	}
	*h = *created
	return nil
}

// Update writes every column of h. Gallery links are replaced only when
// GalleryIDs is non-nil.
func (r *HomestayRepo) Update(ctx context.Context, h *model.HomestayFamily) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists uint64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM homestay_families WHERE id=? FOR UPDATE", h.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrHomestayNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE homestay_families SET name=?, head_of_family=?, contact_number=?, email=?, description=?,
			 address=?, featured_image=?, amenities=?, is_active=? WHERE id=?`,
			h.Name, h.HeadOfFamily, h.ContactNumber, nullString(h.Email), h.Description, h.Address,
			h.FeaturedImage, nullString(h.Amenities), h.IsActive, h.ID); err != nil {
			return mapWriteError(err)
		}
		if h.GalleryIDs == nil {
			return nil
		}
		return familyGallery.replace(ctx, tx, h.ID, h.GalleryIDs)
	})
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, h.ID, false)
	if err != nil {
		return err
	}
	*h = *updated
	return nil
}

// Delete removes the homestay. Rooms, their bookings and reviews cascade.
func (r *HomestayRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM homestay_families WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHomestayNotFound
	}
	return nil
}

// attach loads gallery images and rooms for every homestay in list.
func (r *HomestayRepo) attach(ctx context.Context, list []model.HomestayFamily) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uint64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	images, err := familyGallery.load(ctx, r.db, ids)
	if err != nil {
		return err
	}
	rooms, err := r.rooms.byHomestays(ctx, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Gallery = nonNilImages(images[list[i].ID])
		list[i].Rooms = rooms[list[i].ID]
		if list[i].Rooms == nil {
			list[i].Rooms = []model.Room{}
		}
	}
	return nil
}

func nonNilImages(in []model.HomestayImage) []model.HomestayImage {
	if in == nil {
		return []model.HomestayImage{}
	}
	return in
}
