package services

import (
	"context"
	"path/filepath"
	"testing"

	"training-portal/backend/config"
	"training-portal/backend/models"
	"training-portal/backend/repository"
	"training-portal/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	catalog  *CatalogService
	progress *ProgressService
}

func newFixture(t *testing.T, policy config.CompletionPolicy) *fixture {
	t.Helper()
	db, err := utils.InitDB(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "services.db"),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := utils.NewNopLogger()
	catalogRepo := repository.NewCatalogRepository(db, log)
	f := &fixture{
		db:      db,
		catalog: NewCatalogService(catalogRepo, log),
		progress: NewProgressService(
			catalogRepo,
			repository.NewProgressRepository(db, log),
			repository.NewQuizRepository(db, log),
			policy,
			log,
		),
	}
	f.seed(t)
	return f
}

// seed creates client "acme" with course "c1" (modules m1, m2) and an empty
// course "c2".
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.catalog.CreateClient(ctx, &models.Client{ID: "acme", Name: "Acme", Slug: "acme", Active: true}))
	require.NoError(t, f.catalog.CreateCourse(ctx, "acme", &models.Course{ID: "c1", Title: "Onboarding", Active: true, SortOrder: 1}))
	require.NoError(t, f.catalog.CreateCourse(ctx, "acme", &models.Course{ID: "c2", Title: "Empty", Active: true, SortOrder: 2}))
	require.NoError(t, f.catalog.CreateModule(ctx, "c1", &models.Module{ID: "m1", Title: "Intro", ContentType: models.ContentVideo, SortOrder: 1}))
	require.NoError(t, f.catalog.CreateModule(ctx, "c1", &models.Module{ID: "m2", Title: "Quiz", ContentType: models.ContentQuiz, SortOrder: 2}))
}

func (f *fixture) countRows(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

// assertCompletionInvariant checks completed == (completed_at IS NOT NULL) on
// every stored progress row.
func (f *fixture) assertCompletionInvariant(t *testing.T) {
	t.Helper()
	var courses []models.CourseProgress
	require.NoError(t, f.db.Find(&courses).Error)
	for _, r := range courses {
		require.Equal(t, r.Completed, r.CompletedAt != nil, "course progress %s", r.ID)
	}
	var modules []models.ModuleProgress
	require.NoError(t, f.db.Find(&modules).Error)
	for _, r := range modules {
		require.Equal(t, r.Completed, r.CompletedAt != nil, "module progress %s", r.ID)
	}
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
