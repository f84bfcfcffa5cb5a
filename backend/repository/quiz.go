package repository

import (
	"context"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gorm.io/gorm"
)

// QuizRepository is the append-only quiz result log. It has no
// update or delete methods.
type QuizRepository struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewQuizRepository(db *gorm.DB, baseLog *utils.Logger) *QuizRepository {
	return &QuizRepository{db: db, log: baseLog.With("repo", "QuizRepository")}
}

// CreateQuizResult assigns the learner's next attempt number and inserts the
// row. Two concurrent inserts for one learner can pick the same number; the
// loser gets gorm.ErrDuplicatedKey from the unique (learner_id, attempt) index.
func (r *QuizRepository) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.QuizResult{}).
			Where("learner_id = ?", result.LearnerID).
			Select("COALESCE(MAX(attempt), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		result.Attempt = last + 1
		return tx.Create(result).Error
	})
}

// ListQuizResults returns the learner's attempts, most recent first. Attempts
// stamped with the same completed_at come back newest attempt first.
func (r *QuizRepository) ListQuizResults(ctx context.Context, learnerID string) ([]models.QuizResult, error) {
	results := []models.QuizResult{}
	if err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("completed_at DESC, attempt DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
