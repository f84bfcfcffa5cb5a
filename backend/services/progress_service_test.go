package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"training-portal/backend/config"
	"training-portal/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestUpdateCourseProgressCreatesCompletedRow(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	row, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{
		Completed: boolPtr(true), CompletedModules: intPtr(2), TotalModules: intPtr(2), ProgressPercent: intPtr(100),
	})
	require.NoError(t, err)
	assert.True(t, row.Completed)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, 100, row.ProgressPercent)
	assert.EqualValues(t, 1, f.countRows(t, &models.CourseProgress{}, "learner_id = ? AND course_id = ?", "u1", "c1"))
	f.assertCompletionInvariant(t)
}

func TestUpdateCourseProgressTwiceKeepsOneRow(t *testing.T) {
	for _, policy := range []config.CompletionPolicy{config.CompletionFirst, config.CompletionLatest} {
		t.Run(string(policy), func(t *testing.T) {
			f := newFixture(t, policy)
			ctx := context.Background()
			clock := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
			f.progress.WithClock(func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			})

			first, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{Completed: boolPtr(true)})
			require.NoError(t, err)
			second, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{Completed: boolPtr(true)})
			require.NoError(t, err)

			assert.Equal(t, first.ID, second.ID)
			assert.EqualValues(t, 1, f.countRows(t, &models.CourseProgress{}, "learner_id = ?", "u1"))
			require.NotNil(t, first.CompletedAt)
			require.NotNil(t, second.CompletedAt)
			assert.False(t, second.CompletedAt.Before(*first.CompletedAt))
			if policy == config.CompletionFirst {
				assert.True(t, second.CompletedAt.Equal(*first.CompletedAt))
			} else {
				assert.True(t, second.CompletedAt.After(*first.CompletedAt))
			}
		})
	}
}

func TestUpdateCourseProgressNeverRegresses(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	_, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	row, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{Completed: boolPtr(false), ProgressPercent: intPtr(40)})
	require.NoError(t, err)
	assert.True(t, row.Completed)
	assert.NotNil(t, row.CompletedAt)
	assert.Equal(t, 40, row.ProgressPercent)
	f.assertCompletionInvariant(t)
}

func TestUpdateCourseProgressRejectsUnknownCourse(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)

	_, err := f.progress.UpdateCourseProgress(context.Background(), "u1", "does-not-exist", CoursePatch{Completed: boolPtr(true)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReference)
	assert.EqualValues(t, 0, f.countRows(t, &models.CourseProgress{}, "learner_id = ?", "u1"))
}

func TestUpdateCourseProgressValidatesPatch(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	for name, patch := range map[string]CoursePatch{
		"percent above 100":    {ProgressPercent: intPtr(101)},
		"negative percent":     {ProgressPercent: intPtr(-1)},
		"negative count":       {CompletedModules: intPtr(-2)},
		"completed over total": {CompletedModules: intPtr(3), TotalModules: intPtr(2)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", patch)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := f.progress.UpdateCourseProgress(ctx, " ", "c1", CoursePatch{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateModuleProgressScenario(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	open, err := f.progress.UpdateModuleProgress(ctx, "u1", "m1", ModulePatch{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, open.Completed)
	assert.Nil(t, open.CompletedAt)
	assert.Equal(t, "c1", open.CourseID)

	done, err := f.progress.UpdateModuleProgress(ctx, "u1", "m1", ModulePatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, open.ID, done.ID)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.False(t, done.CompletedAt.Before(open.CreatedAt))
	f.assertCompletionInvariant(t)
}

func TestFreshCompletedRowIsNotCompletedBeforeCreation(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		learner := fmt.Sprintf("fresh-%d", i)

		module, err := f.progress.UpdateModuleProgress(ctx, learner, "m1", ModulePatch{Completed: boolPtr(true)})
		require.NoError(t, err)
		require.NotNil(t, module.CompletedAt)
		assert.False(t, module.CompletedAt.Before(module.CreatedAt), "module completed %s, created %s", module.CompletedAt, module.CreatedAt)

		course, err := f.progress.UpdateCourseProgress(ctx, learner, "c1", CoursePatch{Completed: boolPtr(true)})
		require.NoError(t, err)
		require.NotNil(t, course.CompletedAt)
		assert.False(t, course.CompletedAt.Before(course.CreatedAt), "course completed %s, created %s", course.CompletedAt, course.CreatedAt)
	}

	var early int64
	require.NoError(t, f.db.Model(&models.ModuleProgress{}).Where("completed_at < created_at").Count(&early).Error)
	assert.Zero(t, early)
	require.NoError(t, f.db.Model(&models.CourseProgress{}).Where("completed_at < created_at").Count(&early).Error)
	assert.Zero(t, early)
}

func TestUpdateCourseProgressChecksMergedCounts(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	_, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{CompletedModules: intPtr(2), TotalModules: intPtr(2)})
	require.NoError(t, err)

	_, err = f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{TotalModules: intPtr(1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{CompletedModules: intPtr(3)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	row, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{TotalModules: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 2, row.CompletedModules)
	assert.Equal(t, 4, row.TotalModules)
}

func TestQuizResultsWithEqualTimestamps(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()
	fixed := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	f.progress.WithClock(func() time.Time { return fixed })

	for i := 1; i <= 4; i++ {
		saved, err := f.progress.SaveQuizResult(ctx, "u1", QuizResultInput{ModuleID: strPtr("m2"), Score: i})
		require.NoError(t, err)

		results, err := f.progress.GetQuizResults(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, results, i)
		assert.Equal(t, saved.ID, results[0].ID)
	}
}

func TestUpdateModuleProgressRejectsUnknownModule(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)

	_, err := f.progress.UpdateModuleProgress(context.Background(), "u1", "ghost", ModulePatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrReference)
	assert.EqualValues(t, 0, f.countRows(t, &models.ModuleProgress{}, "learner_id = ?", "u1"))
}

func TestGetUserCourseProgressIsStable(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	empty, err := f.progress.GetUserCourseProgress(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{ProgressPercent: intPtr(50)})
	require.NoError(t, err)
	_, err = f.progress.UpdateCourseProgress(ctx, "u1", "c2", CoursePatch{ProgressPercent: intPtr(10)})
	require.NoError(t, err)
	_, err = f.progress.UpdateCourseProgress(ctx, "u9", "c1", CoursePatch{ProgressPercent: intPtr(10)})
	require.NoError(t, err)

	a, err := f.progress.GetUserCourseProgress(ctx, "u1")
	require.NoError(t, err)
	b, err := f.progress.GetUserCourseProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, a, 2)
	assert.Equal(t, a, b)
}

func TestConcurrentCourseProgressUpdates(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := f.progress.UpdateCourseProgress(ctx, "u2", "c1", CoursePatch{Completed: boolPtr(true)})
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, f.countRows(t, &models.CourseProgress{}, "learner_id = ? AND course_id = ?", "u2", "c1"))
	f.assertCompletionInvariant(t)
}

func TestQuizResultsAreAppendOnly(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()
	clock := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	f.progress.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	var last string
	for i := 1; i <= 3; i++ {
		saved, err := f.progress.SaveQuizResult(ctx, "u1", QuizResultInput{
			ModuleID: strPtr("m2"), Score: i, MaxScore: 5, Passed: i >= 3,
			Answers: []byte(`{"q1":"b"}`),
		})
		require.NoError(t, err)
		last = saved.ID

		results, err := f.progress.GetQuizResults(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, results, i)
		assert.Equal(t, last, results[0].ID)
	}

	courseQuiz, err := f.progress.SaveQuizResult(ctx, "u1", QuizResultInput{CourseID: strPtr("c1"), Score: 1, MaxScore: 1, Passed: true})
	require.NoError(t, err)
	require.NotNil(t, courseQuiz.CourseID)
	assert.Nil(t, courseQuiz.ModuleID)
}

func TestSaveQuizResultValidation(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	cases := map[string]struct {
		in   QuizResultInput
		kind error
	}{
		"no target":      {QuizResultInput{Score: 1}, ErrInvalidArgument},
		"both targets":   {QuizResultInput{ModuleID: strPtr("m1"), CourseID: strPtr("c1")}, ErrInvalidArgument},
		"score over max": {QuizResultInput{ModuleID: strPtr("m1"), Score: 6, MaxScore: 5}, ErrInvalidArgument},
		"bad answers":    {QuizResultInput{ModuleID: strPtr("m1"), Answers: []byte(`{nope`)}, ErrInvalidArgument},
		"unknown module": {QuizResultInput{ModuleID: strPtr("ghost")}, ErrReference},
		"unknown course": {QuizResultInput{CourseID: strPtr("ghost")}, ErrReference},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.progress.SaveQuizResult(ctx, "u1", tc.in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
	assert.EqualValues(t, 0, f.countRows(t, &models.QuizResult{}, "learner_id = ?", "u1"))
}

func TestResetProgress(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	_, err := f.progress.UpdateModuleProgress(ctx, "u1", "m1", ModulePatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	_, err = f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	removed, err := f.progress.ResetModuleProgress(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.progress.ResetCourseProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.progress.ResetCourseProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, removed)

	rows, err := f.progress.GetUserCourseProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	again, err := f.progress.UpdateCourseProgress(ctx, "u1", "c1", CoursePatch{ProgressPercent: intPtr(5)})
	require.NoError(t, err)
	assert.False(t, again.Completed)
	assert.Nil(t, again.CompletedAt)
}

func TestRecomputeCourseProgress(t *testing.T) {
	f := newFixture(t, config.CompletionFirst)
	ctx := context.Background()

	_, err := f.progress.UpdateModuleProgress(ctx, "u1", "m1", ModulePatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	half, err := f.progress.RecomputeCourseProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, half.CompletedModules)
	assert.Equal(t, 2, half.TotalModules)
	assert.Equal(t, 50, half.ProgressPercent)
	assert.False(t, half.Completed)

	_, err = f.progress.UpdateModuleProgress(ctx, "u1", "m2", ModulePatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	full, err := f.progress.RecomputeCourseProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, half.ID, full.ID)
	assert.Equal(t, 100, full.ProgressPercent)
	assert.True(t, full.Completed)
	assert.NotNil(t, full.CompletedAt)

	empty, err := f.progress.RecomputeCourseProgress(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.ProgressPercent)
	assert.False(t, empty.Completed)

	_, err = f.progress.RecomputeCourseProgress(ctx, "u1", "ghost")
	assert.ErrorIs(t, err, ErrReference)
	f.assertCompletionInvariant(t)
}
