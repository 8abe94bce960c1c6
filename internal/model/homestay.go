package model

import (
	"math"
	"time"
)

// HomestayFamily is a family offering rooms to guests.
type HomestayFamily struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name" validate:"required,max=200"`
	HeadOfFamily  string          `json:"head_of_family" validate:"required,max=200"`
	ContactNumber string          `json:"contact_number" validate:"required,max=20"`
	Email         string          `json:"email" validate:"omitempty,email,max=254"`
	Description   string          `json:"description" validate:"required"`
	Address       string          `json:"address" validate:"required"`
	FeaturedImage Image           `json:"featured_image" validate:"required"`
	Amenities     string          `json:"amenities"`
	IsActive      bool            `json:"is_active"`
	GalleryIDs    []uint64        `json:"gallery_image_ids,omitempty"`
	Gallery       []HomestayImage `json:"gallery_images"`
	Rooms         []Room          `json:"rooms"`
	RoomCount     *int            `json:"room_count,omitempty"`
	AvgRating     *float64        `json:"avg_rating,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ResolveMedia rewrites every image reference through fn.
func (h *HomestayFamily) ResolveMedia(fn func(Image) Image) {
	h.FeaturedImage = fn(h.FeaturedImage)
	for i := range h.Gallery {
		h.Gallery[i].ResolveMedia(fn)
	}
	for i := range h.Rooms {
		h.Rooms[i].ResolveMedia(fn)
	}
}

// HomestayImage is a gallery picture shared by homestays and rooms.
type HomestayImage struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Image       Image     `json:"image" validate:"required"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *HomestayImage) ResolveMedia(fn func(Image) Image) {
	i.Image = fn(i.Image)
}

// Room is a bookable room of a homestay.
type Room struct {
	ID                 uint64          `json:"id"`
	HomestayID         uint64          `json:"homestay" validate:"required"`
	HomestayName       string          `json:"homestay_name,omitempty"`
	Name               string          `json:"name" validate:"required,max=200"`
	Description        string          `json:"description" validate:"required"`
	Capacity           int             `json:"capacity" validate:"required,min=1"`
	PricePerNightCents int64           `json:"price_per_night_cents" validate:"gte=0"`
	PricePerNight      float64         `json:"price_per_night"`
	FeaturedImage      Image           `json:"featured_image" validate:"required"`
	Amenities          string          `json:"amenities" validate:"required"`
	IsAvailable        bool            `json:"is_available"`
	GalleryIDs         []uint64        `json:"gallery_image_ids,omitempty"`
	Gallery            []HomestayImage `json:"gallery_images"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (r *Room) ResolveMedia(fn func(Image) Image) {
	r.FeaturedImage = fn(r.FeaturedImage)
	for i := range r.Gallery {
		r.Gallery[i].ResolveMedia(fn)
	}
}

// SyncPrice keeps the decimal and cent representations of the nightly rate
// in step. Cents win when both are set.
func (r *Room) SyncPrice() {
	if r.PricePerNightCents == 0 && r.PricePerNight > 0 {
		r.PricePerNightCents = AmountToCents(r.PricePerNight)
	}
	r.PricePerNight = CentsToAmount(r.PricePerNightCents)
}

// FilterByCapacity keeps rooms that sleep at least capacity guests. A
// non-positive capacity keeps everything.
func FilterByCapacity(rooms []Room, capacity int) []Room {
	if capacity <= 0 {
		return rooms
	}
	out := rooms[:0:0]
	for _, r := range rooms {
		if r.Capacity >= capacity {
			out = append(out, r)
		}
	}
	return out
}

// CentsToAmount renders cents as a two-decimal amount.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

// AmountToCents rounds a decimal amount to the nearest cent.
func AmountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
