package repository

import (
	"context"
	"path/filepath"
	"testing"

	"training-portal/backend/config"
	"training-portal/backend/models"
	"training-portal/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := utils.InitDB(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "repo.db"),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCatalog(t *testing.T, repo *CatalogRepository) (models.Client, models.Course) {
	t.Helper()
	ctx := context.Background()
	client := models.Client{ID: "acme", Name: "Acme", Slug: "acme", Active: true}
	require.NoError(t, repo.CreateClient(ctx, &client))
	course := models.Course{
		ID: "c1", ClientID: client.ID, Title: "Onboarding",
		Difficulty: models.DifficultyBeginner, Active: true, SortOrder: 1,
	}
	require.NoError(t, repo.CreateCourse(ctx, &course))
	return client, course
}
