package models_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trucksigns/truck-signs-api/app/cache"
	"github.com/trucksigns/truck-signs-api/app/database"
	"github.com/trucksigns/truck-signs-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newIDCache() *cache.IDCache {
	return cache.NewIDCache(cache.NewMemoryStore(time.Minute), cache.NewKeyBuilder("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type seeded struct {
	truckSign models.Category
	decal     models.Category
	line1     models.LetteringItemCategory
	line2     models.LetteringItemCategory
	color     models.ProductColor
	flame     models.Product
	eagle     models.Product
	upload    models.Product
	bumper    models.Product
}

func seedCatalog(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	s := seeded{
		truckSign: models.Category{Title: models.TruckSignCategory, BasePrice: decimal.RequireFromString("100.00"), MaxAmountOfLetteringItems: 4},
		decal:     models.Category{Title: "Decal", BasePrice: decimal.RequireFromString("19.99")},
		line1:     models.LetteringItemCategory{Title: "Line1", Price: decimal.RequireFromString("15.00")},
		line2:     models.LetteringItemCategory{Title: "Line2", Price: decimal.RequireFromString("12.50")},
		color:     models.ProductColor{ColorNickname: "Chrome", ColorInHex: "#C0C0C0"},
	}
	require.NoError(t, db.Create(&s.truckSign).Error)
	require.NoError(t, db.Create(&s.decal).Error)
	require.NoError(t, db.Create(&s.line1).Error)
	require.NoError(t, db.Create(&s.line2).Error)
	require.NoError(t, db.Create(&s.color).Error)

	s.flame = models.Product{Title: "Flame", CategoryID: s.truckSign.ID, Image: "/media/flame.png"}
	s.eagle = models.Product{Title: "Eagle", CategoryID: s.truckSign.ID}
	s.upload = models.Product{Title: "Customer-Image-1", CategoryID: s.truckSign.ID, IsUploaded: true}
	s.bumper = models.Product{Title: "Bumper", CategoryID: s.decal.ID}
	for _, p := range []*models.Product{&s.flame, &s.eagle, &s.upload, &s.bumper} {
		require.NoError(t, db.Omit("Category").Create(p).Error)
	}
	return s
}
