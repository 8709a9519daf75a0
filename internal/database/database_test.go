package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"worklane/internal/models"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, model := range []any{
		&models.User{}, &models.WorkerProfile{}, &models.Post{},
		&models.Project{}, &models.Application{}, &models.Comment{},
		&models.Chat{}, &models.Message{}, &models.Token{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}

	// re-running against an up-to-date schema is a no-op
	assert.NoError(t, Migrate(db))
}
