// Package storetest provides an in-memory database and fixtures for tests.
package storetest

import (
	"testing"

	"cafefinder/database"
	"cafefinder/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db), "Failed to migrate schema")
	return db
}

func BlueBottle() model.CafeEntry {
	return model.CafeEntry{
		Name:        "Blue Bottle",
		MapURL:      "https://maps.example/blue-bottle",
		Zipcode:     "02108",
		City:        "Boston",
		HasSockets:  true,
		HasToilet:   true,
		HasWifi:     true,
		CoffeePrice: model.PriceThreeToFour,
	}
}

func JavaHut() model.CafeEntry {
	return model.CafeEntry{
		Name:        "Java Hut",
		MapURL:      "https://maps.example/java-hut",
		Zipcode:     "02138",
		City:        "Cambridge",
		HasSockets:  false,
		HasToilet:   true,
		HasWifi:     false,
		CoffeePrice: model.PriceOneToTwo,
	}
}
