package model

import "time"

// Review is a guest's rating of a homestay, optionally tied to the booking
// it came from. A booking has at most one review.
type Review struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user"`
	UserName     string    `json:"user_name"`
	HomestayID   uint64    `json:"homestay" validate:"required"`
	HomestayName string    `json:"homestay_name"`
	BookingID    *uint64   `json:"booking"`
	Rating       int       `json:"rating" validate:"required,min=1,max=5"`
	Comment      string    `json:"comment" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
