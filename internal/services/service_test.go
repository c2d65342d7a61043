package services

import (
	"testing"
	"time"

	"lostfound/internal/db"
	"lostfound/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// Max one connection, otherwise every pooled connection would see its
// own empty :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(g))
	return g
}

func createUser(t *testing.T, g *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", Role: role}
	require.NoError(t, g.Create(&user).Error)
	return &user
}

func createTown(t *testing.T, g *gorm.DB, name string) *models.Town {
	t.Helper()
	town := models.Town{Name: name}
	require.NoError(t, g.Create(&town).Error)
	return &town
}

func createCategory(t *testing.T, g *gorm.DB, name string) *models.Category {
	t.Helper()
	cat := models.Category{Name: name}
	require.NoError(t, g.Create(&cat).Error)
	return &cat
}

func createListing(t *testing.T, g *gorm.DB, owner *models.User, title string, categoryID, townID uint) *models.Listing {
	t.Helper()
	listing := models.Listing{
		Title:       title,
		Description: "описание на " + title,
		Status:      models.StatusLost,
		OwnerID:     owner.ID,
		CategoryID:  categoryID,
		TownID:      townID,
		DateEvent:   time.Now(),
	}
	require.NoError(t, g.Create(&listing).Error)
	return &listing
}
