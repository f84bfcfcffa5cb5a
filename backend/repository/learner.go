package repository

import (
	"context"
	"errors"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gorm.io/gorm"
)

type LearnerRepository struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewLearnerRepository(db *gorm.DB, baseLog *utils.Logger) *LearnerRepository {
	return &LearnerRepository{db: db, log: baseLog.With("repo", "LearnerRepository")}
}

func (r *LearnerRepository) CreateLearner(ctx context.Context, learner *models.Learner) error {
	return r.db.WithContext(ctx).Create(learner).Error
}

func (r *LearnerRepository) FindLearnerByUsername(ctx context.Context, username string) (*models.Learner, error) {
	var learner models.Learner
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&learner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &learner, nil
}
