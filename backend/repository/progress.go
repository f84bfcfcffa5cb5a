package repository

import (
	"context"
	"errors"
	"fmt"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns of course_progress a caller may overwrite through an upsert.
var courseProgressPatchColumns = map[string]bool{
	"completed_modules": true,
	"total_modules":     true,
	"progress_percent":  true,
}

// ProgressRepository owns the course_progress and module_progress ledgers.
type ProgressRepository struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewProgressRepository(db *gorm.DB, baseLog *utils.Logger) *ProgressRepository {
	return &ProgressRepository{db: db, log: baseLog.With("repo", "ProgressRepository")}
}

func (r *ProgressRepository) ListCourseProgress(ctx context.Context, learnerID string) ([]models.CourseProgress, error) {
	rows := []models.CourseProgress{}
	if err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProgressRepository) ListModuleProgress(ctx context.Context, learnerID string) ([]models.ModuleProgress, error) {
	rows := []models.ModuleProgress{}
	if err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProgressRepository) ListModuleProgressForCourse(ctx context.Context, learnerID, courseID string) ([]models.ModuleProgress, error) {
	rows := []models.ModuleProgress{}
	if err := r.db.WithContext(ctx).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProgressRepository) FindCourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	var row models.CourseProgress
	err := r.db.WithContext(ctx).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProgressRepository) FindModuleProgress(ctx context.Context, learnerID, moduleID string) (*models.ModuleProgress, error) {
	var row models.ModuleProgress
	err := r.db.WithContext(ctx).
		Where("learner_id = ? AND module_id = ?", learnerID, moduleID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertCourseProgress inserts row, or on a (learner_id, course_id) conflict
// overwrites only the listed columns of the existing row, in one statement.
//
// The completed flag never goes back to false. row.CompletedAt must be set
// iff row.Completed; when the stored row is already completed its timestamp
// is kept unless restamp is true.
func (r *ProgressRepository) UpsertCourseProgress(ctx context.Context, row *models.CourseProgress, columns []string, restamp bool) (*models.CourseProgress, error) {
	set := make(clause.Set, 0, len(columns)+3)
	for _, col := range columns {
		if !courseProgressPatchColumns[col] {
			return nil, fmt.Errorf("upsert course progress: column %q is not patchable", col)
		}
		set = append(set, excluded(col))
	}
	set = append(set, completionAssignments(models.CourseProgress{}.TableName(), restamp)...)
	set = append(set, excluded("updated_at"))

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "course_id"}},
			DoUpdates: set,
		}).
		Create(row).Error
	if err != nil {
		r.log.Warn("course progress upsert failed", "course_id", row.CourseID, "error", err)
		return nil, err
	}
	return r.FindCourseProgress(ctx, row.LearnerID, row.CourseID)
}

// UpsertModuleProgress is the module_progress counterpart of
// UpsertCourseProgress; only the completion pair is ever overwritten.
func (r *ProgressRepository) UpsertModuleProgress(ctx context.Context, row *models.ModuleProgress, restamp bool) (*models.ModuleProgress, error) {
	set := completionAssignments(models.ModuleProgress{}.TableName(), restamp)
	set = append(set, excluded("updated_at"))

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "module_id"}},
			DoUpdates: set,
		}).
		Create(row).Error
	if err != nil {
		r.log.Warn("module progress upsert failed", "module_id", row.ModuleID, "error", err)
		return nil, err
	}
	return r.FindModuleProgress(ctx, row.LearnerID, row.ModuleID)
}

// DeleteCourseProgress removes the row; false means there was none.
func (r *ProgressRepository) DeleteCourseProgress(ctx context.Context, learnerID, courseID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Delete(&models.CourseProgress{})
	return res.RowsAffected > 0, res.Error
}

func (r *ProgressRepository) DeleteModuleProgress(ctx context.Context, learnerID, moduleID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("learner_id = ? AND module_id = ?", learnerID, moduleID).
		Delete(&models.ModuleProgress{})
	return res.RowsAffected > 0, res.Error
}

func excluded(col string) clause.Assignment {
	return clause.Assignment{
		Column: clause.Column{Name: col},
		Value:  clause.Column{Table: "excluded", Name: col},
	}
}

// completionAssignments merges the completion pair of an existing row with the
// incoming one: completed = old OR new, completed_at = first non-null of
// (old, new), or of (new, old) when restamping.
func completionAssignments(table string, restamp bool) clause.Set {
	oldCompleted := clause.Column{Table: table, Name: "completed"}
	newCompleted := clause.Column{Table: "excluded", Name: "completed"}
	oldAt := clause.Column{Table: table, Name: "completed_at"}
	newAt := clause.Column{Table: "excluded", Name: "completed_at"}

	at := gorm.Expr("COALESCE(?, ?)", oldAt, newAt)
	if restamp {
		at = gorm.Expr("COALESCE(?, ?)", newAt, oldAt)
	}
	return clause.Set{
		{Column: clause.Column{Name: "completed"}, Value: gorm.Expr("? OR ?", oldCompleted, newCompleted)},
		{Column: clause.Column{Name: "completed_at"}, Value: at},
	}
}
