package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dholimara/homestay-api/internal/database"
	"github.com/dholimara/homestay-api/internal/model"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, username, first_name, last_name, COALESCE(phone_number,''),
	profile_image, COALESCE(bio,''), password_hash, is_staff, is_active, date_joined, updated_at`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.ProfileImage, &u.Bio, &u.PasswordHash, &u.IsStaff, &u.IsActive, &u.DateJoined, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u and reloads it so defaults and timestamps are filled.
// The password must already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username, first_name, last_name, phone_number, profile_image, bio, password_hash, is_staff)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		u.Email, u.Username, u.FirstName, u.LastName, nullString(u.PhoneNumber),
		nullString(string(u.ProfileImage)), nullString(u.Bio), u.PasswordHash, u.IsStaff)
	if err != nil {
		return userWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// UpdateProfile writes the editable profile columns of u.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email=?, username=?, first_name=?, last_name=?, phone_number=?, profile_image=?, bio=?
		 WHERE id=?`,
		u.Email, u.Username, u.FirstName, u.LastName, nullString(u.PhoneNumber),
		nullString(string(u.ProfileImage)), nullString(u.Bio), u.ID)
	if err != nil {
		return userWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for a no-op update too; confirm the row exists
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user; bookings, reviews and tokens cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func userWriteError(err error) error {
	if database.IsDuplicateKey(err) {
		if strings.Contains(err.Error(), "uq_users_username") {
			return ErrUsernameExists
		}
		return ErrEmailExists
	}
	return err
}
