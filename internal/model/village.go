package model

import (
	"time"

	"github.com/gosimple/slug"
)

// Village content is flat: every record stands alone apart from an optional
// category reference. Records that carry a slug derive it from their
// title or name when the client leaves it blank.

type Category struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Slug        string    `json:"slug" validate:"max=100"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) Prepare() { c.Slug = slugOr(c.Slug, c.Name) }

type CulturalEvent struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title" validate:"required,max=200"`
	Slug          string    `json:"slug" validate:"max=200"`
	CategoryID    uint64    `json:"category" validate:"required"`
	CategoryName  string    `json:"category_name"`
	Description   string    `json:"description" validate:"required"`
	FeaturedImage Image     `json:"featured_image" validate:"required"`
	Importance    string    `json:"importance"`
	Season        string    `json:"season" validate:"max=100"`
	VideoURL      string    `json:"video_url" validate:"omitempty,url"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e *CulturalEvent) Prepare()                         { e.Slug = slugOr(e.Slug, e.Title) }
func (e *CulturalEvent) ResolveMedia(fn func(Image) Image) { e.FeaturedImage = fn(e.FeaturedImage) }

type FoodItem struct {
	ID                   uint64    `json:"id"`
	Name                 string    `json:"name" validate:"required,max=200"`
	Slug                 string    `json:"slug" validate:"max=200"`
	Description          string    `json:"description" validate:"required"`
	Ingredients          string    `json:"ingredients" validate:"required"`
	Preparation          string    `json:"preparation" validate:"required"`
	FeaturedImage        Image     `json:"featured_image" validate:"required"`
	CulturalSignificance string    `json:"cultural_significance"`
	IsVegetarian         bool      `json:"is_vegetarian"`
	IsFeatured           bool      `json:"is_featured"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (f *FoodItem) Prepare()                         { f.Slug = slugOr(f.Slug, f.Name) }
func (f *FoodItem) ResolveMedia(fn func(Image) Image) { f.FeaturedImage = fn(f.FeaturedImage) }

type LifestyleElement struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title" validate:"required,max=200"`
	Slug          string    `json:"slug" validate:"max=200"`
	Description   string    `json:"description" validate:"required"`
	FeaturedImage Image     `json:"featured_image" validate:"required"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (l *LifestyleElement) Prepare()                         { l.Slug = slugOr(l.Slug, l.Title) }
func (l *LifestyleElement) ResolveMedia(fn func(Image) Image) { l.FeaturedImage = fn(l.FeaturedImage) }

// OkBajiStory is a chapter of the OK Baji history, listed newest year first.
type OkBajiStory struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title" validate:"required,max=200"`
	Slug          string    `json:"slug" validate:"max=200"`
	Year          *int      `json:"year" validate:"omitempty,min=1900,max=2100"`
	Story         string    `json:"story" validate:"required"`
	Impact        string    `json:"impact"`
	FeaturedImage Image     `json:"featured_image" validate:"required"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *OkBajiStory) Prepare()                         { s.Slug = slugOr(s.Slug, s.Title) }
func (s *OkBajiStory) ResolveMedia(fn func(Image) Image) { s.FeaturedImage = fn(s.FeaturedImage) }

type GalleryItem struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title" validate:"required,max=200"`
	CategoryID   uint64    `json:"category" validate:"required"`
	CategoryName string    `json:"category_name"`
	Description  string    `json:"description"`
	Image        Image     `json:"image" validate:"required"`
	Location     string    `json:"location" validate:"max=200"`
	DateTaken    Date      `json:"date_taken"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (g *GalleryItem) ResolveMedia(fn func(Image) Image) { g.Image = fn(g.Image) }

// Testimonial is a visitor quote. Section and ItemID optionally attach it
// to one part of the site, e.g. section "homestay" and a homestay id.
type Testimonial struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name" validate:"required,max=100"`
	Country    string    `json:"country" validate:"required,max=100"`
	Message    string    `json:"message" validate:"required"`
	Photo      Image     `json:"photo"`
	Section    string    `json:"section" validate:"omitempty,oneof=general homestay cultural-events food-items lifestyle ok-baji gallery"`
	ItemID     *uint64   `json:"item_id"`
	IsFeatured bool      `json:"is_featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *Testimonial) ResolveMedia(fn func(Image) Image) { t.Photo = fn(t.Photo) }

// HighlightItem is a curated card on a section landing page, shown in
// ascending DisplayOrder.
type HighlightItem struct {
	ID           uint64    `json:"id"`
	Section      string    `json:"section" validate:"required,max=50"`
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description"`
	Image        Image     `json:"image"`
	LinkURL      string    `json:"link_url" validate:"max=500"`
	DisplayOrder int       `json:"display_order" validate:"gte=0"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (h *HighlightItem) ResolveMedia(fn func(Image) Image) { h.Image = fn(h.Image) }

func slugOr(current, source string) string {
	if current != "" {
		return slug.Make(current)
	}
	return slug.Make(source)
}
