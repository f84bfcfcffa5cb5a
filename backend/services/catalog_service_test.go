package services

import (
	"context"
	"testing"

	"training-portal/backend/config"
	"training-portal/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCoursesByClientSlug(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	courses, err := f.catalog.GetCoursesByClientSlug(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Equal(t, "c2", courses[1].ID)

	none, err := f.catalog.GetCoursesByClientSlug(ctx, "nonexistent")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	none, err = f.catalog.GetCoursesByClientSlug(ctx, "ACME")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetCourseWithModules(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	course, err := f.catalog.GetCourseWithModules(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, course)
	require.Len(t, course.Modules, 2)
	assert.Equal(t, "m1", course.Modules[0].ID)
	assert.Equal(t, models.DifficultyBeginner, course.Difficulty)

	missing, err := f.catalog.GetCourseWithModules(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateClientValidation(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	err := f.catalog.CreateClient(ctx, &models.Client{Name: "Globex", Slug: "Globex Corp"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.catalog.CreateClient(ctx, &models.Client{Name: "  ", Slug: "globex"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.catalog.CreateClient(ctx, &models.Client{Name: "Acme again", Slug: "acme", Active: true})
	assert.ErrorIs(t, err, ErrConflict)

	globex := &models.Client{Name: "Globex", Slug: "globex-corp", Active: true}
	require.NoError(t, f.catalog.CreateClient(ctx, globex))
	assert.NotEmpty(t, globex.ID)
}

func TestDeactivateClientHidesIt(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	client, err := f.catalog.DeactivateClient(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.False(t, client.Active)

	active, err := f.catalog.GetActiveClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	unknown, err := f.catalog.DeactivateClient(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestCreateCourseAndModuleReferences(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	err := f.catalog.CreateCourse(ctx, "nobody", &models.Course{Title: "Orphan"})
	assert.ErrorIs(t, err, ErrReference)

	err = f.catalog.CreateCourse(ctx, "acme", &models.Course{Title: "Hard", Difficulty: "expert"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.catalog.CreateModule(ctx, "ghost", &models.Module{Title: "Lost", ContentType: models.ContentDocument})
	assert.ErrorIs(t, err, ErrReference)

	err = f.catalog.CreateModule(ctx, "c2", &models.Module{Title: "Slides", ContentType: "slides"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	module := &models.Module{Title: "Reading", ContentType: models.ContentDocument}
	require.NoError(t, f.catalog.CreateModule(ctx, "c2", module))
	assert.Equal(t, "c2", module.CourseID)
}
