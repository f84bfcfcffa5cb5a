package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizResult is one attempt. Rows are only ever inserted; exactly one of
// ModuleID and CourseID is set, depending on where the quiz lives. Attempt
// numbers a learner's results 1, 2, 3... in insertion order.
type QuizResult struct {
	ID          string         `gorm:"primaryKey;size:64" json:"id"`
	LearnerID   string         `gorm:"size:64;not null;index:idx_quiz_results_learner_completed,priority:1;uniqueIndex:idx_quiz_results_learner_attempt,priority:1" json:"learner_id"`
	Attempt     int64          `gorm:"not null;uniqueIndex:idx_quiz_results_learner_attempt,priority:2" json:"attempt"`
	ModuleID    *string        `gorm:"size:64;index" json:"module_id,omitempty"`
	CourseID    *string        `gorm:"size:64;index" json:"course_id,omitempty"`
	Score       int            `gorm:"not null" json:"score"`
	MaxScore    int            `gorm:"not null" json:"max_score"`
	Passed      bool           `gorm:"not null" json:"passed"`
	Answers     datatypes.JSON `json:"answers,omitempty"`
	CompletedAt time.Time      `gorm:"not null;index:idx_quiz_results_learner_completed,priority:2" json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (QuizResult) TableName() string { return "quiz_results" }

func (q *QuizResult) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
