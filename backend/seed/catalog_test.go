package seed

import (
	"context"
	"path/filepath"
	"testing"

	"training-portal/backend/config"
	"training-portal/backend/models"
	"training-portal/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := utils.InitDB(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "seed.db"),
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

func TestLoadAndApply(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, LoadAndApply(ctx, db, "testdata/catalog.yaml", utils.NewNopLogger()))

	var clients []models.Client
	require.NoError(t, db.Order("id").Find(&clients).Error)
	require.Len(t, clients, 2)
	assert.True(t, clients[0].Active)
	assert.False(t, clients[1].Active)

	var brand models.Course
	require.NoError(t, db.Take(&brand, "id = ?", "acme-brand").Error)
	assert.False(t, brand.Active)
	assert.Equal(t, models.DifficultyIntermediate, brand.Difficulty)

	var modules int64
	require.NoError(t, db.Model(&models.Module{}).Where("course_id = ?", "acme-onboarding").Count(&modules).Error)
	assert.EqualValues(t, 2, modules)
}

func TestApplyIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	log := utils.NewNopLogger()

	catalog, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, db, catalog, log))

	catalog.Clients[0].Courses[0].Title = "Onboarding v2"
	require.NoError(t, Apply(ctx, db, catalog, log))

	var count int64
	require.NoError(t, db.Model(&models.Course{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var course models.Course
	require.NoError(t, db.Take(&course, "id = ?", "acme-onboarding").Error)
	assert.Equal(t, "Onboarding v2", course.Title)
	assert.Equal(t, "acme", course.ClientID)
}

func TestParseRejectsInvalidCatalog(t *testing.T) {
	cases := map[string]string{
		"missing slug": `
clients:
  - id: a
    name: A
`,
		"bad content type": `
clients:
  - id: a
    name: A
    slug: a
    courses:
      - id: c
        title: C
        modules:
          - id: m
            title: M
            content_type: slides
`,
		"duplicate course": `
clients:
  - id: a
    name: A
    slug: a
    courses:
      - {id: c, title: One}
      - {id: c, title: Two}
`,
		"bad difficulty": `
clients:
  - id: a
    name: A
    slug: a
    courses:
      - {id: c, title: C, difficulty: expert}
`,
		"not yaml": "clients: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
