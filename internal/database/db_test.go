package database

import (
	"path/filepath"
	"testing"

	"billing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SeedsDefaults(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var prefix model.Setting
	require.NoError(t, db.First(&prefix, "key = ?", model.SettingInvoicePrefix).Error)
	assert.Equal(t, "GKS", prefix.Value)

	var count int64
	require.NoError(t, db.Model(&model.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(model.DefaultCategories)), count)
}

func TestMigrate_DoesNotOverwriteSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Model(&model.Setting{}).
		Where("key = ?", model.SettingInvoiceCounter).
		Update("value", "42").Error)

	require.NoError(t, Migrate(db))

	var counter model.Setting
	require.NoError(t, db.First(&counter, "key = ?", model.SettingInvoiceCounter).Error)
	assert.Equal(t, "42", counter.Value)

	var count int64
	require.NoError(t, db.Model(&model.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(model.DefaultCategories)), count)
}
