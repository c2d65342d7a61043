package db

import (
	"os"

	"lostfound/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=lostfound port=5432 sslmode=disable TimeZone=Europe/Sofia"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	log.Info().Msg("database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database migration completed")

	seedReferenceData()
}

// Migrate creates or updates the schema for all models. Shared with the
// test helpers so tests run against the same schema.
func Migrate(g *gorm.DB) error {
	return g.AutoMigrate(
		&models.User{},
		&models.Town{},
		&models.Category{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Comment{},
		&models.CommentImage{},
		&models.Notification{},
	)
}

// seedReferenceData creates the initial towns and categories users pick
// from when posting a listing.
func seedReferenceData() {
	var count int64
	DB.Model(&models.Town{}).Count(&count)
	if count == 0 {
		towns := []models.Town{
			{Name: "София"},
			{Name: "Пловдив"},
			{Name: "Варна"},
			{Name: "Бургас"},
		}
		for _, town := range towns {
			if err := DB.Create(&town).Error; err != nil {
				log.Error().Err(err).Str("town", town.Name).Msg("failed to seed town")
			}
		}
		log.Info().Int("towns", len(towns)).Msg("initial towns created")
	}

	DB.Model(&models.Category{}).Count(&count)
	if count == 0 {
		categories := []models.Category{
			{Name: "Животно"},
			{Name: "Предмет"},
			{Name: "Ключове"},
			{Name: "Документи"},
		}
		for _, cat := range categories {
			if err := DB.Create(&cat).Error; err != nil {
				log.Error().Err(err).Str("category", cat.Name).Msg("failed to seed category")
			}
		}
		log.Info().Int("categories", len(categories)).Msg("initial categories created")
	}
}
