package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"training-portal/backend/config"
	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CoursePatch carries the fields a caller wants to change; nil means "leave
// as stored". Completed=false never un-completes a row.
type CoursePatch struct {
	CompletedModules *int  `json:"completed_modules"`
	TotalModules     *int  `json:"total_modules"`
	ProgressPercent  *int  `json:"progress_percent"`
	Completed        *bool `json:"completed"`
}

type ModulePatch struct {
	Completed *bool `json:"completed"`
}

// QuizResultInput describes one attempt. Exactly one of ModuleID and CourseID
// must be set.
type QuizResultInput struct {
	ModuleID *string        `json:"module_id"`
	CourseID *string        `json:"course_id"`
	Score    int            `json:"score"`
	MaxScore int            `json:"max_score"`
	Passed   bool           `json:"passed"`
	Answers  datatypes.JSON `json:"answers"`
}

// ProgressService records learner progress. It holds no per-request state;
// the learner id is always passed in by the caller.
type ProgressService struct {
	catalog  CatalogStore
	progress ProgressStore
	quizzes  QuizStore
	policy   config.CompletionPolicy
	now      func() time.Time
	log      *utils.Logger
}

func NewProgressService(catalog CatalogStore, progress ProgressStore, quizzes QuizStore, policy config.CompletionPolicy, baseLog *utils.Logger) *ProgressService {
	if !policy.Valid() {
		policy = config.CompletionFirst
	}
	return &ProgressService{
		catalog:  catalog,
		progress: progress,
		quizzes:  quizzes,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
		log:      baseLog.With("service", "ProgressService"),
	}
}

// WithClock replaces the time source used for completion and attempt stamps.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

func (s *ProgressService) GetUserCourseProgress(ctx context.Context, learnerID string) ([]models.CourseProgress, error) {
	const op = "get user course progress"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	rows, err := s.progress.ListCourseProgress(ctx, learnerID)
	if err != nil {
		return nil, transport(op, err)
	}
	return rows, nil
}

func (s *ProgressService) GetUserModuleProgress(ctx context.Context, learnerID string) ([]models.ModuleProgress, error) {
	const op = "get user module progress"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	rows, err := s.progress.ListModuleProgress(ctx, learnerID)
	if err != nil {
		return nil, transport(op, err)
	}
	return rows, nil
}

// GetQuizResults lists attempts newest first.
func (s *ProgressService) GetQuizResults(ctx context.Context, learnerID string) ([]models.QuizResult, error) {
	const op = "get quiz results"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	results, err := s.quizzes.ListQuizResults(ctx, learnerID)
	if err != nil {
		return nil, transport(op, err)
	}
	return results, nil
}

// UpdateCourseProgress upserts the (learner, course) row. Unknown courses are
// rejected with ErrReference and nothing is written.
func (s *ProgressService) UpdateCourseProgress(ctx context.Context, learnerID, courseID string, patch CoursePatch) (*models.CourseProgress, error) {
	const op = "update course progress"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	if err := validateCoursePatch(op, patch); err != nil {
		return nil, err
	}
	if err := s.requireCourse(ctx, op, courseID); err != nil {
		return nil, err
	}
	if err := s.checkMergedCounts(ctx, op, learnerID, courseID, patch); err != nil {
		return nil, err
	}

	now := s.now()
	row := &models.CourseProgress{LearnerID: learnerID, CourseID: courseID, CreatedAt: now, UpdatedAt: now}
	var columns []string
	if patch.CompletedModules != nil {
		row.CompletedModules = *patch.CompletedModules
		columns = append(columns, "completed_modules")
	}
	if patch.TotalModules != nil {
		row.TotalModules = *patch.TotalModules
		columns = append(columns, "total_modules")
	}
	if patch.ProgressPercent != nil {
		row.ProgressPercent = *patch.ProgressPercent
		columns = append(columns, "progress_percent")
	}
	if patch.Completed != nil && *patch.Completed {
		markCompleted(now, &row.Completed, &row.CompletedAt)
	}

	return s.saveCourseProgress(ctx, op, row, columns)
}

// UpdateModuleProgress upserts the (learner, module) row.
func (s *ProgressService) UpdateModuleProgress(ctx context.Context, learnerID, moduleID string, patch ModulePatch) (*models.ModuleProgress, error) {
	const op = "update module progress"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(moduleID) == "" {
		return nil, invalid(op, "module id is required")
	}
	module, err := s.catalog.FindModule(ctx, moduleID)
	if err != nil {
		return nil, transport(op, err)
	}
	if module == nil {
		return nil, reference(op, "module %q does not exist", moduleID)
	}

	now := s.now()
	row := &models.ModuleProgress{
		LearnerID: learnerID,
		ModuleID:  module.ID,
		CourseID:  module.CourseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if patch.Completed != nil && *patch.Completed {
		markCompleted(now, &row.Completed, &row.CompletedAt)
	}

	var saved *models.ModuleProgress
	err = s.withConstraintRetry(op, func() { row.ID = "" }, func() (err error) {
		saved, err = s.progress.UpsertModuleProgress(ctx, row, s.restamp())
		return err
	})
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, &Error{Op: op, Kind: ErrConflict, Err: errors.New("progress row removed concurrently")}
	}
	s.log.Debug("module progress saved", "learner_id", learnerID, "module_id", moduleID, "completed", saved.Completed)
	return saved, nil
}

// SaveQuizResult appends one attempt; earlier attempts are never touched.
func (s *ProgressService) SaveQuizResult(ctx context.Context, learnerID string, in QuizResultInput) (*models.QuizResult, error) {
	const op = "save quiz result"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	moduleID, courseID := trimmed(in.ModuleID), trimmed(in.CourseID)
	if (moduleID == "") == (courseID == "") {
		return nil, invalid(op, "exactly one of module_id and course_id is required")
	}
	if in.Score < 0 || in.MaxScore < 0 {
		return nil, invalid(op, "score and max_score must not be negative")
	}
	if in.MaxScore > 0 && in.Score > in.MaxScore {
		return nil, invalid(op, "score %d exceeds max_score %d", in.Score, in.MaxScore)
	}
	if len(in.Answers) > 0 && !json.Valid(in.Answers) {
		return nil, invalid(op, "answers must be valid JSON")
	}

	now := s.now()
	result := &models.QuizResult{
		LearnerID:   learnerID,
		Score:       in.Score,
		MaxScore:    in.MaxScore,
		Passed:      in.Passed,
		Answers:     in.Answers,
		CompletedAt: now,
		CreatedAt:   now,
	}
	if moduleID != "" {
		module, err := s.catalog.FindModule(ctx, moduleID)
		if err != nil {
			return nil, transport(op, err)
		}
		if module == nil {
			return nil, reference(op, "module %q does not exist", moduleID)
		}
		result.ModuleID = &module.ID
	} else {
		if err := s.requireCourse(ctx, op, courseID); err != nil {
			return nil, err
		}
		result.CourseID = &courseID
	}

	err := s.withConstraintRetry(op, func() { result.ID, result.Attempt = "", 0 }, func() error {
		return s.quizzes.CreateQuizResult(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quiz result saved", "learner_id", learnerID, "quiz_result_id", result.ID, "passed", result.Passed)
	return result, nil
}

// ResetCourseProgress returns the learner to not_started for this course.
// This is the only way a completed row goes away.
func (s *ProgressService) ResetCourseProgress(ctx context.Context, learnerID, courseID string) (bool, error) {
	const op = "reset course progress"
	if err := requireLearner(op, learnerID); err != nil {
		return false, err
	}
	removed, err := s.progress.DeleteCourseProgress(ctx, learnerID, courseID)
	if err != nil {
		return false, transport(op, err)
	}
	if removed {
		s.log.Info("course progress reset", "learner_id", learnerID, "course_id", courseID)
	}
	return removed, nil
}

func (s *ProgressService) ResetModuleProgress(ctx context.Context, learnerID, moduleID string) (bool, error) {
	const op = "reset module progress"
	if err := requireLearner(op, learnerID); err != nil {
		return false, err
	}
	removed, err := s.progress.DeleteModuleProgress(ctx, learnerID, moduleID)
	if err != nil {
		return false, transport(op, err)
	}
	if removed {
		s.log.Info("module progress reset", "learner_id", learnerID, "module_id", moduleID)
	}
	return removed, nil
}

// RecomputeCourseProgress derives the course aggregates from the learner's
// module rows and stores them. A course counts as completed once every one of
// its modules is, and it has at least one.
func (s *ProgressService) RecomputeCourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	const op = "recompute course progress"
	if err := requireLearner(op, learnerID); err != nil {
		return nil, err
	}
	if err := s.requireCourse(ctx, op, courseID); err != nil {
		return nil, err
	}

	total, err := s.catalog.CountModules(ctx, courseID)
	if err != nil {
		return nil, transport(op, err)
	}
	rows, err := s.progress.ListModuleProgressForCourse(ctx, learnerID, courseID)
	if err != nil {
		return nil, transport(op, err)
	}
	completed := 0
	for _, r := range rows {
		if r.Completed {
			completed++
		}
	}

	now := s.now()
	row := &models.CourseProgress{
		LearnerID:        learnerID,
		CourseID:         courseID,
		CompletedModules: completed,
		TotalModules:     int(total),
		ProgressPercent:  percent(completed, int(total)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if total > 0 && int64(completed) >= total {
		markCompleted(now, &row.Completed, &row.CompletedAt)
	}
	return s.saveCourseProgress(ctx, op, row, []string{"completed_modules", "total_modules", "progress_percent"})
}

func (s *ProgressService) saveCourseProgress(ctx context.Context, op string, row *models.CourseProgress, columns []string) (*models.CourseProgress, error) {
	var saved *models.CourseProgress
	err := s.withConstraintRetry(op, func() { row.ID = "" }, func() (err error) {
		saved, err = s.progress.UpsertCourseProgress(ctx, row, columns, s.restamp())
		return err
	})
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, &Error{Op: op, Kind: ErrConflict, Err: errors.New("progress row removed concurrently")}
	}
	s.log.Debug("course progress saved", "learner_id", row.LearnerID, "course_id", row.CourseID,
		"percent", saved.ProgressPercent, "completed", saved.Completed)
	return saved, nil
}

// withConstraintRetry runs write, and once more after reset if the store
// reports a unique-key violation. A second violation is surfaced as
// ErrConstraintViolation, a failed check constraint as ErrInvalidArgument and
// any other failure as ErrTransport.
func (s *ProgressService) withConstraintRetry(op string, reset func(), write func() error) error {
	err := write()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.log.Warn("unique key collision, retrying", "op", op, "error", err)
		reset()
		err = write()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &Error{Op: op, Kind: ErrConstraintViolation, Err: err}
		}
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return &Error{Op: op, Kind: ErrInvalidArgument, Err: err}
	}
	return transport(op, err)
}

// checkMergedCounts rejects a patch that sets only one of the two counters
// when the result, merged with the stored row, would have completed > total.
// The check constraint on course_progress enforces the same bound for writes
// that race past this read.
func (s *ProgressService) checkMergedCounts(ctx context.Context, op, learnerID, courseID string, p CoursePatch) error {
	if (p.CompletedModules == nil) == (p.TotalModules == nil) {
		return nil
	}
	stored, err := s.progress.FindCourseProgress(ctx, learnerID, courseID)
	if err != nil {
		return transport(op, err)
	}
	completed, total := 0, 0
	if stored != nil {
		completed, total = stored.CompletedModules, stored.TotalModules
	}
	if p.CompletedModules != nil {
		completed = *p.CompletedModules
	}
	if p.TotalModules != nil {
		total = *p.TotalModules
	}
	if total > 0 && completed > total {
		return invalid(op, "completed_modules %d would exceed total_modules %d", completed, total)
	}
	return nil
}

func (s *ProgressService) requireCourse(ctx context.Context, op, courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return invalid(op, "course id is required")
	}
	course, err := s.catalog.FindCourse(ctx, courseID)
	if err != nil {
		return transport(op, err)
	}
	if course == nil {
		return reference(op, "course %q does not exist", courseID)
	}
	return nil
}

// markCompleted stamps the completion with the same instant the row's
// created_at/updated_at carry, so a row created completed is never completed
// before it exists.
func markCompleted(now time.Time, completed *bool, at **time.Time) {
	*completed = true
	*at = &now
}

func (s *ProgressService) restamp() bool {
	return s.policy == config.CompletionLatest
}

func requireLearner(op, learnerID string) error {
	if strings.TrimSpace(learnerID) == "" {
		return invalid(op, "learner id is required")
	}
	return nil
}

func validateCoursePatch(op string, p CoursePatch) error {
	if p.ProgressPercent != nil && (*p.ProgressPercent < 0 || *p.ProgressPercent > 100) {
		return invalid(op, "progress_percent must be within 0..100, got %d", *p.ProgressPercent)
	}
	if p.CompletedModules != nil && *p.CompletedModules < 0 {
		return invalid(op, "completed_modules must not be negative")
	}
	if p.TotalModules != nil && *p.TotalModules < 0 {
		return invalid(op, "total_modules must not be negative")
	}
	if p.CompletedModules != nil && p.TotalModules != nil && *p.CompletedModules > *p.TotalModules {
		return invalid(op, "completed_modules %d exceeds total_modules %d", *p.CompletedModules, *p.TotalModules)
	}
	return nil
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := done * 100 / total
	if p > 100 {
		return 100
	}
	return p
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
