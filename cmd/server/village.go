package main

import (
	"database/sql"

	"github.com/dholimara/homestay-api/internal/handler"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/router"
)

// villageSections wires every editable village content table to its path.
func villageSections(db *sql.DB, resolver media.Resolver, log *logger.Logger) []router.VillageSection {
	return []router.VillageSection{
		{Path: "/cultural-events", Handler: handler.NewContentHandler[model.CulturalEvent]("cultural-events",
			repository.NewContentRepo(db, repository.CulturalEventTable()), resolver, log)},
		{Path: "/food-items", Handler: handler.NewContentHandler[model.FoodItem]("food-items",
			repository.NewContentRepo(db, repository.FoodItemTable()), resolver, log)},
		{Path: "/lifestyle", Handler: handler.NewContentHandler[model.LifestyleElement]("lifestyle",
			repository.NewContentRepo(db, repository.LifestyleTable()), resolver, log)},
		{Path: "/ok-baji", Handler: handler.NewContentHandler[model.OkBajiStory]("ok-baji",
			repository.NewContentRepo(db, repository.OkBajiTable()), resolver, log)},
		{Path: "/gallery", Handler: handler.NewContentHandler[model.GalleryItem]("gallery",
			repository.NewContentRepo(db, repository.GalleryTable()), resolver, log)},
		{Path: "/testimonials", Handler: handler.NewContentHandler[model.Testimonial]("testimonials",
			repository.NewContentRepo(db, repository.TestimonialTable()), resolver, log)},
		{Path: "/highlights", Handler: handler.NewContentHandler[model.HighlightItem]("highlights",
			repository.NewContentRepo(db, repository.HighlightTable()), resolver, log)},
	}
}
