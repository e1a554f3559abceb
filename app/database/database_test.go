package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trucksigns/truck-signs-api/models"
)

func TestOpenSQLiteMigratesSchema(t *testing.T) {
	db, err := Open(Config{
		Driver:       DriverSQLite,
		DSN:          "file:database_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasColumn(&models.Order{}, "charge_token"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}
