package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CatalogService is the read side of clients, courses and modules, plus the
// administrative write path.
type CatalogService struct {
	store CatalogStore
	log   *utils.Logger
}

func NewCatalogService(store CatalogStore, baseLog *utils.Logger) *CatalogService {
	return &CatalogService{store: store, log: baseLog.With("service", "CatalogService")}
}

func (s *CatalogService) GetActiveClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.store.ListActiveClients(ctx)
	if err != nil {
		return nil, transport("get active clients", err)
	}
	return clients, nil
}

// GetClientBySlug returns nil when no client has exactly this slug.
func (s *CatalogService) GetClientBySlug(ctx context.Context, slug string) (*models.Client, error) {
	client, err := s.store.FindClientBySlug(ctx, slug)
	if err != nil {
		return nil, transport("get client by slug", err)
	}
	return client, nil
}

// GetCoursesByClientSlug returns an empty slice for unknown clients.
func (s *CatalogService) GetCoursesByClientSlug(ctx context.Context, slug string) ([]models.Course, error) {
	client, err := s.store.FindClientBySlug(ctx, slug)
	if err != nil {
		return nil, transport("get courses by client slug", err)
	}
	if client == nil {
		return []models.Course{}, nil
	}
	courses, err := s.store.ListActiveCoursesByClient(ctx, client.ID)
	if err != nil {
		return nil, transport("get courses by client slug", err)
	}
	return courses, nil
}

func (s *CatalogService) GetCourseWithModules(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.store.FindCourseWithModules(ctx, courseID)
	if err != nil {
		return nil, transport("get course with modules", err)
	}
	return course, nil
}

func (s *CatalogService) CreateClient(ctx context.Context, client *models.Client) error {
	const op = "create client"
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return invalid(op, "name is required")
	}
	if !slugPattern.MatchString(client.Slug) {
		return invalid(op, "slug %q must be lowercase words joined by dashes", client.Slug)
	}
	if err := s.store.CreateClient(ctx, client); err != nil {
		return storeWriteError(op, err)
	}
	s.log.Info("client created", "client_id", client.ID, "slug", client.Slug)
	return nil
}

// DeactivateClient returns nil, nil when the slug is unknown.
func (s *CatalogService) DeactivateClient(ctx context.Context, slug string) (*models.Client, error) {
	client, err := s.store.SetClientActive(ctx, slug, false)
	if err != nil {
		return nil, transport("deactivate client", err)
	}
	return client, nil
}

// CreateCourse attaches the course to the client resolved from clientSlug.
func (s *CatalogService) CreateCourse(ctx context.Context, clientSlug string, course *models.Course) error {
	const op = "create course"
	client, err := s.store.FindClientBySlug(ctx, clientSlug)
	if err != nil {
		return transport(op, err)
	}
	if client == nil {
		return reference(op, "client %q does not exist", clientSlug)
	}

	course.ClientID = client.ID
	course.Title = strings.TrimSpace(course.Title)
	if course.Title == "" {
		return invalid(op, "title is required")
	}
	if course.Difficulty == "" {
		course.Difficulty = models.DifficultyBeginner
	}
	if !course.Difficulty.Valid() {
		return invalid(op, "unknown difficulty %q", course.Difficulty)
	}
	if course.EstimatedMinutes < 0 {
		return invalid(op, "estimated_minutes must not be negative")
	}
	course.Modules = nil

	if err := s.store.CreateCourse(ctx, course); err != nil {
		return storeWriteError(op, err)
	}
	s.log.Info("course created", "course_id", course.ID, "client_id", client.ID)
	return nil
}

func (s *CatalogService) CreateModule(ctx context.Context, courseID string, module *models.Module) error {
	const op = "create module"
	course, err := s.store.FindCourse(ctx, courseID)
	if err != nil {
		return transport(op, err)
	}
	if course == nil {
		return reference(op, "course %q does not exist", courseID)
	}

	module.CourseID = course.ID
	module.Title = strings.TrimSpace(module.Title)
	if module.Title == "" {
		return invalid(op, "title is required")
	}
	if !module.ContentType.Valid() {
		return invalid(op, "unknown content type %q", module.ContentType)
	}

	if err := s.store.CreateModule(ctx, module); err != nil {
		return storeWriteError(op, err)
	}
	s.log.Info("module created", "module_id", module.ID, "course_id", course.ID)
	return nil
}

// storeWriteError maps a unique-key violation on an administrative insert to
// ErrConflict and anything else to ErrTransport.
func storeWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Op: op, Kind: ErrConflict, Err: err}
	}
	return transport(op, err)
}
