package repository

import (
	"database/sql"

	"github.com/dholimara/homestay-api/internal/model"
)

// Table descriptors for the village content types.

var featuredFilter = ContentFilter{Column: "c.is_featured", Kind: FilterBool}

func CategoryTable() ContentTable[model.Category] {
	return ContentTable[model.Category]{
		Name:    "village_categories",
		Select:  "c.id, c.name, c.slug, COALESCE(c.description,''), c.created_at, c.updated_at",
		From:    "FROM village_categories c",
		Columns: []string{"name", "slug", "description"},
		Args: func(v *model.Category) []any {
			return []any{v.Name, v.Slug, nullString(v.Description)}
		},
		Scan: func(s scanner) (*model.Category, error) {
			var v model.Category
			err := s.Scan(&v.ID, &v.Name, &v.Slug, &v.Description, &v.CreatedAt, &v.UpdatedAt)
			return &v, err
		},
		Search:  []string{"c.name", "c.description"},
		OrderBy: "c.name, c.id",
	}
}

func CulturalEventTable() ContentTable[model.CulturalEvent] {
	return ContentTable[model.CulturalEvent]{
		Name: "cultural_events",
		Select: `c.id, c.title, c.slug, c.category_id, cat.name, c.description, c.featured_image,
			COALESCE(c.importance,''), COALESCE(c.season,''), COALESCE(c.video_url,''), c.is_featured, c.created_at, c.updated_at`,
		From:    "FROM cultural_events c JOIN village_categories cat ON cat.id = c.category_id",
		Columns: []string{"title", "slug", "category_id", "description", "featured_image", "importance", "season", "video_url", "is_featured"},
		Args: func(v *model.CulturalEvent) []any {
			return []any{v.Title, v.Slug, v.CategoryID, v.Description, v.FeaturedImage,
				nullString(v.Importance), nullString(v.Season), nullString(v.VideoURL), v.IsFeatured}
		},
		Scan: func(s scanner) (*model.CulturalEvent, error) {
			var v model.CulturalEvent
			err := s.Scan(&v.ID, &v.Title, &v.Slug, &v.CategoryID, &v.CategoryName, &v.Description, &v.FeaturedImage,
				&v.Importance, &v.Season, &v.VideoURL, &v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			return &v, err
		},
		Search: []string{"c.title", "c.description"},
		Filters: map[string]ContentFilter{
			"category":    {Column: "c.category_id", Kind: FilterUint},
			"is_featured": featuredFilter,
		},
		OrderBy: "c.created_at DESC, c.id DESC",
	}
}

func FoodItemTable() ContentTable[model.FoodItem] {
	return ContentTable[model.FoodItem]{
		Name: "food_items",
		Select: `c.id, c.name, c.slug, c.description, c.ingredients, c.preparation, c.featured_image,
			COALESCE(c.cultural_significance,''), c.is_vegetarian, c.is_featured, c.created_at, c.updated_at`,
		From:    "FROM food_items c",
		Columns: []string{"name", "slug", "description", "ingredients", "preparation", "featured_image", "cultural_significance", "is_vegetarian", "is_featured"},
		Args: func(v *model.FoodItem) []any {
			return []any{v.Name, v.Slug, v.Description, v.Ingredients, v.Preparation, v.FeaturedImage,
				nullString(v.CulturalSignificance), v.IsVegetarian, v.IsFeatured}
		},
		Scan: func(s scanner) (*model.FoodItem, error) {
			var v model.FoodItem
			err := s.Scan(&v.ID, &v.Name, &v.Slug, &v.Description, &v.Ingredients, &v.Preparation, &v.FeaturedImage,
				&v.CulturalSignificance, &v.IsVegetarian, &v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			return &v, err
		},
		Search: []string{"c.name", "c.description", "c.ingredients"},
		Filters: map[string]ContentFilter{
			"is_vegetarian": {Column: "c.is_vegetarian", Kind: FilterBool},
			"is_featured":   featuredFilter,
		},
		OrderBy: "c.created_at DESC, c.id DESC",
	}
}

func LifestyleTable() ContentTable[model.LifestyleElement] {
	return ContentTable[model.LifestyleElement]{
		Name:    "lifestyle_elements",
		Select:  "c.id, c.title, c.slug, c.description, c.featured_image, c.is_featured, c.created_at, c.updated_at",
		From:    "FROM lifestyle_elements c",
		Columns: []string{"title", "slug", "description", "featured_image", "is_featured"},
		Args: func(v *model.LifestyleElement) []any {
			return []any{v.Title, v.Slug, v.Description, v.FeaturedImage, v.IsFeatured}
		},
		Scan: func(s scanner) (*model.LifestyleElement, error) {
			var v model.LifestyleElement
			err := s.Scan(&v.ID, &v.Title, &v.Slug, &v.Description, &v.FeaturedImage, &v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			return &v, err
		},
		Search:  []string{"c.title", "c.description"},
		Filters: map[string]ContentFilter{"is_featured": featuredFilter},
		OrderBy: "c.created_at DESC, c.id DESC",
	}
}

func OkBajiTable() ContentTable[model.OkBajiStory] {
	return ContentTable[model.OkBajiStory]{
		Name: "ok_baji_stories",
		Select: `c.id, c.title, c.slug, c.year, c.story, COALESCE(c.impact,''), c.featured_image,
			c.is_featured, c.created_at, c.updated_at`,
		From:    "FROM ok_baji_stories c",
		Columns: []string{"title", "slug", "year", "story", "impact", "featured_image", "is_featured"},
		Args: func(v *model.OkBajiStory) []any {
			var year any
			if v.Year != nil {
				year = *v.Year
			}
			return []any{v.Title, v.Slug, year, v.Story, nullString(v.Impact), v.FeaturedImage, v.IsFeatured}
		},
		Scan: func(s scanner) (*model.OkBajiStory, error) {
			var (
				v    model.OkBajiStory
				year sql.NullInt64
			)
			err := s.Scan(&v.ID, &v.Title, &v.Slug, &year, &v.Story, &v.Impact, &v.FeaturedImage,
				&v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			if year.Valid {
				y := int(year.Int64)
				v.Year = &y
			}
			return &v, err
		},
		Search:  []string{"c.title", "c.story"},
		Filters: map[string]ContentFilter{"is_featured": featuredFilter},
		OrderBy: "c.year IS NULL, c.year DESC, c.id DESC",
	}
}

func GalleryTable() ContentTable[model.GalleryItem] {
	return ContentTable[model.GalleryItem]{
		Name: "gallery_items",
		Select: `c.id, c.title, c.category_id, cat.name, COALESCE(c.description,''), c.image,
			COALESCE(c.location,''), c.date_taken, c.is_featured, c.created_at, c.updated_at`,
		From:    "FROM gallery_items c JOIN village_categories cat ON cat.id = c.category_id",
		Columns: []string{"title", "category_id", "description", "image", "location", "date_taken", "is_featured"},
		Args: func(v *model.GalleryItem) []any {
			return []any{v.Title, v.CategoryID, nullString(v.Description), v.Image,
				nullString(v.Location), v.DateTaken, v.IsFeatured}
		},
		Scan: func(s scanner) (*model.GalleryItem, error) {
			var v model.GalleryItem
			err := s.Scan(&v.ID, &v.Title, &v.CategoryID, &v.CategoryName, &v.Description, &v.Image,
				&v.Location, &v.DateTaken, &v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			return &v, err
		},
		Search: []string{"c.title", "c.description", "c.location"},
		Filters: map[string]ContentFilter{
			"category":    {Column: "c.category_id", Kind: FilterUint},
			"is_featured": featuredFilter,
		},
		OrderBy: "c.created_at DESC, c.id DESC",
	}
}

func TestimonialTable() ContentTable[model.Testimonial] {
	return ContentTable[model.Testimonial]{
		Name: "testimonials",
		Select: `c.id, c.name, c.country, c.message, c.photo, COALESCE(c.section,''), c.item_id,
			c.is_featured, c.created_at, c.updated_at`,
		From:    "FROM testimonials c",
		Columns: []string{"name", "country", "message", "photo", "section", "item_id", "is_featured"},
		Args: func(v *model.Testimonial) []any {
			return []any{v.Name, v.Country, v.Message, nullString(string(v.Photo)),
				nullString(v.Section), nullUint(v.ItemID), v.IsFeatured}
		},
		Scan: func(s scanner) (*model.Testimonial, error) {
			var (
				v    model.Testimonial
				item sql.NullInt64
			)
			err := s.Scan(&v.ID, &v.Name, &v.Country, &v.Message, &v.Photo, &v.Section, &item,
				&v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			v.ItemID = uintPtr(item)
			return &v, err
		},
		Search: []string{"c.name", "c.country", "c.message"},
		Filters: map[string]ContentFilter{
			"section":     {Column: "c.section", Kind: FilterString},
			"item":        {Column: "c.item_id", Kind: FilterUint},
			"is_featured": featuredFilter,
		},
		OrderBy: "c.created_at DESC, c.id DESC",
	}
}

func HighlightTable() ContentTable[model.HighlightItem] {
	return ContentTable[model.HighlightItem]{
		Name: "highlight_items",
		Select: `c.id, c.section, c.title, COALESCE(c.description,''), c.image, COALESCE(c.link_url,''),
			c.display_order, c.is_featured, c.created_at, c.updated_at`,
		From:    "FROM highlight_items c",
		Columns: []string{"section", "title", "description", "image", "link_url", "display_order", "is_featured"},
		Args: func(v *model.HighlightItem) []any {
			return []any{v.Section, v.Title, nullString(v.Description), nullString(string(v.Image)),
				nullString(v.LinkURL), v.DisplayOrder, v.IsFeatured}
		},
		Scan: func(s scanner) (*model.HighlightItem, error) {
			var v model.HighlightItem
			err := s.Scan(&v.ID, &v.Section, &v.Title, &v.Description, &v.Image, &v.LinkURL,
				&v.DisplayOrder, &v.IsFeatured, &v.CreatedAt, &v.UpdatedAt)
			return &v, err
		},
		Search: []string{"c.title", "c.description"},
		Filters: map[string]ContentFilter{
			"section":     {Column: "c.section", Kind: FilterString},
			"is_featured": featuredFilter,
		},
		OrderBy: "c.section, c.display_order, c.id",
	}
}
