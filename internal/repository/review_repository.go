package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dholimara/homestay-api/internal/database"
	"github.com/dholimara/homestay-api/internal/model"
)

type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

type ReviewFilter struct {
	HomestayID uint64
	Rating     int
}

const reviewColumns = `rv.id, rv.user_id, u.first_name, u.last_name, u.username, rv.homestay_id, f.name,
	rv.booking_id, rv.rating, rv.comment, rv.created_at, rv.updated_at`

const reviewFrom = ` FROM reviews rv
	JOIN users u ON u.id = rv.user_id
	JOIN homestay_families f ON f.id = rv.homestay_id`

func scanReview(s scanner) (*model.Review, error) {
	var (
		rv                    model.Review
		first, last, username string
		booking               sql.NullInt64
	)
	err := s.Scan(&rv.ID, &rv.UserID, &first, &last, &username, &rv.HomestayID, &rv.HomestayName,
		&booking, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	rv.UserName = model.DisplayName(first, last, username)
	rv.BookingID = uintPtr(booking)
	return &rv, nil
}

// List returns reviews newest first.
func (r *ReviewRepo) List(ctx context.Context, f ReviewFilter) ([]model.Review, error) {
	var (
		where []string
		args  []any
	)
	if f.HomestayID != 0 {
		where = append(where, "rv.homestay_id = ?")
		args = append(args, f.HomestayID)
	}
	if f.Rating != 0 {
		where = append(where, "rv.rating = ?")
		args = append(args, f.Rating)
	}
	q := "SELECT " + reviewColumns + reviewFrom
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY rv.created_at DESC, rv.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx, "SELECT "+reviewColumns+reviewFrom+" WHERE rv.id = ?", id))
}

func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, homestay_id, booking_id, rating, comment) VALUES (?,?,?,?,?)",
		rv.UserID, rv.HomestayID, nullUint(rv.BookingID), rv.Rating, rv.Comment)
	if err != nil {
		return reviewWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rv = *created
	return nil
}

// Update writes homestay, booking, rating and comment. The author never
// changes.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET homestay_id=?, booking_id=?, rating=?, comment=? WHERE id=?",
		rv.HomestayID, nullUint(rv.BookingID), rv.Rating, rv.Comment, rv.ID); err != nil {
		return reviewWriteError(err)
	}
	updated, err := r.GetByID(ctx, rv.ID)
	if err != nil {
		return err
	}
	*rv = *updated
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func reviewWriteError(err error) error {
	if database.IsDuplicateKey(err) {
		return ErrReviewExists
	}
	return mapWriteError(err)
}
