package services

import (
	"context"

	"training-portal/backend/models"
)

// Lookups that find nothing return (nil, nil) or an empty slice; a non-nil
// error always means the store itself failed.

type CatalogStore interface {
	ListActiveClients(ctx context.Context) ([]models.Client, error)
	FindClientBySlug(ctx context.Context, slug string) (*models.Client, error)
	ListActiveCoursesByClient(ctx context.Context, clientID string) ([]models.Course, error)
	FindCourse(ctx context.Context, courseID string) (*models.Course, error)
	FindCourseWithModules(ctx context.Context, courseID string) (*models.Course, error)
	FindModule(ctx context.Context, moduleID string) (*models.Module, error)
	CountModules(ctx context.Context, courseID string) (int64, error)

	CreateClient(ctx context.Context, client *models.Client) error
	SetClientActive(ctx context.Context, slug string, active bool) (*models.Client, error)
	CreateCourse(ctx context.Context, course *models.Course) error
	CreateModule(ctx context.Context, module *models.Module) error
}

type ProgressStore interface {
	ListCourseProgress(ctx context.Context, learnerID string) ([]models.CourseProgress, error)
	ListModuleProgress(ctx context.Context, learnerID string) ([]models.ModuleProgress, error)
	ListModuleProgressForCourse(ctx context.Context, learnerID, courseID string) ([]models.ModuleProgress, error)
	FindCourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error)
	UpsertCourseProgress(ctx context.Context, row *models.CourseProgress, columns []string, restamp bool) (*models.CourseProgress, error)
	UpsertModuleProgress(ctx context.Context, row *models.ModuleProgress, restamp bool) (*models.ModuleProgress, error)
	DeleteCourseProgress(ctx context.Context, learnerID, courseID string) (bool, error)
	DeleteModuleProgress(ctx context.Context, learnerID, moduleID string) (bool, error)
}

type QuizStore interface {
	CreateQuizResult(ctx context.Context, result *models.QuizResult) error
	ListQuizResults(ctx context.Context, learnerID string) ([]models.QuizResult, error)
}

type LearnerStore interface {
	CreateLearner(ctx context.Context, learner *models.Learner) error
	FindLearnerByUsername(ctx context.Context, username string) (*models.Learner, error)
}
