// Package repository holds the hand-written SQL for every table. Lookups
// that find nothing return the Err*NotFound sentinel of their table so
// that callers never have to compare against sql.ErrNoRows.
package repository

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrUsernameExists   = errors.New("username already exists")
	ErrTokenInvalid     = errors.New("refresh token invalid")
	ErrHomestayNotFound = errors.New("homestay not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewExists     = errors.New("review for this booking already exists")
	ErrContentNotFound  = errors.New("content not found")
)

// ErrConflict is returned when a write collides with a unique key, such as
// a duplicate slug.
var ErrConflict = errors.New("conflict")

// ErrInvalidReference is returned when a foreign key points at a row that
// does not exist (for example a room for an unknown homestay).
var ErrInvalidReference = errors.New("invalid reference")
