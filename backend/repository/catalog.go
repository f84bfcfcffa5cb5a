package repository

import (
	"context"
	"errors"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository reads and administers clients, courses and modules.
// Lookups by an unknown key return (nil, nil).
type CatalogRepository struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCatalogRepository(db *gorm.DB, baseLog *utils.Logger) *CatalogRepository {
	return &CatalogRepository{db: db, log: baseLog.With("repo", "CatalogRepository")}
}

func (r *CatalogRepository) ListActiveClients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *CatalogRepository) FindClientBySlug(ctx context.Context, slug string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *CatalogRepository) ListActiveCoursesByClient(ctx context.Context, clientID string) ([]models.Course, error) {
	courses := []models.Course{}
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND active = ?", clientID, true).
		Order("sort_order ASC, id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CatalogRepository) FindCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Where("id = ?", courseID).Take(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindCourseWithModules loads the course and its modules ordered by
// (sort_order, id).
func (r *CatalogRepository) FindCourseWithModules(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("id = ?", courseID).
		Take(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if course.Modules == nil {
		course.Modules = []models.Module{}
	}
	return &course, nil
}

func (r *CatalogRepository) FindModule(ctx context.Context, moduleID string) (*models.Module, error) {
	var module models.Module
	err := r.db.WithContext(ctx).Where("id = ?", moduleID).Take(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *CatalogRepository) CountModules(ctx context.Context, courseID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Module{}).
		Where("course_id = ?", courseID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *CatalogRepository) CreateClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// SetClientActive flips the active flag of the client with the given slug and
// returns the updated row, or nil if no such client exists.
func (r *CatalogRepository) SetClientActive(ctx context.Context, slug string, active bool) (*models.Client, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("slug = ?", slug).
		Update("active", active)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	r.log.Info("client active flag changed", "slug", slug, "active", active)
	return r.FindClientBySlug(ctx, slug)
}

func (r *CatalogRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *CatalogRepository) CreateModule(ctx context.Context, module *models.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}
