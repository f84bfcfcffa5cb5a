package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseProgress is one learner's standing in one course. The aggregate
// counters are supplied by callers; Completed and CompletedAt always move
// together (CompletedAt != nil iff Completed). A TotalModules of 0 means the
// total is not known yet.
type CourseProgress struct {
	ID               string     `gorm:"primaryKey;size:64" json:"id"`
	LearnerID        string     `gorm:"size:64;not null;uniqueIndex:idx_course_progress_learner_course" json:"learner_id"`
	CourseID         string     `gorm:"size:64;not null;uniqueIndex:idx_course_progress_learner_course" json:"course_id"`
	CompletedModules int        `gorm:"not null;check:chk_course_progress_counts,total_modules = 0 OR completed_modules <= total_modules" json:"completed_modules"`
	TotalModules     int        `gorm:"not null" json:"total_modules"`
	ProgressPercent  int        `gorm:"not null" json:"progress_percent"`
	Completed        bool       `gorm:"not null" json:"completed"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }

// ModuleProgress is binary: a module is either completed or not.
type ModuleProgress struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	LearnerID   string     `gorm:"size:64;not null;uniqueIndex:idx_module_progress_learner_module;index:idx_module_progress_learner_course,priority:1" json:"learner_id"`
	ModuleID    string     `gorm:"size:64;not null;uniqueIndex:idx_module_progress_learner_module" json:"module_id"`
	CourseID    string     `gorm:"size:64;not null;index:idx_module_progress_learner_course,priority:2" json:"course_id"`
	Completed   bool       `gorm:"not null" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ModuleProgress) TableName() string { return "module_progress" }

// State reports not_started / in_progress / completed for a possibly missing row.
func (p *CourseProgress) State() ProgressState {
	if p == nil {
		return StateNotStarted
	}
	return stateOf(p.Completed)
}

func (p *ModuleProgress) State() ProgressState {
	if p == nil {
		return StateNotStarted
	}
	return stateOf(p.Completed)
}

type ProgressState string

const (
	StateNotStarted ProgressState = "not_started"
	StateInProgress ProgressState = "in_progress"
	StateCompleted  ProgressState = "completed"
)

func stateOf(completed bool) ProgressState {
	if completed {
		return StateCompleted
	}
	return StateInProgress
}

func (p *CourseProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *ModuleProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
