package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"training-portal/backend/models"
	"training-portal/backend/utils"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog is the on-disk shape of a catalog seed file.
type Catalog struct {
	Version int          `yaml:"version"`
	Clients []yamlClient `yaml:"clients"`
}

type yamlClient struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Slug    string       `yaml:"slug"`
	Active  *bool        `yaml:"active"`
	Courses []yamlCourse `yaml:"courses"`
}

type yamlCourse struct {
	ID               string       `yaml:"id"`
	Title            string       `yaml:"title"`
	Description      string       `yaml:"description"`
	Difficulty       string       `yaml:"difficulty"`
	EstimatedMinutes int          `yaml:"estimated_minutes"`
	SortOrder        int          `yaml:"sort_order"`
	Active           *bool        `yaml:"active"`
	Modules          []yamlModule `yaml:"modules"`
}

type yamlModule struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	ContentType string `yaml:"content_type"`
	ContentURL  string `yaml:"content_url"`
	SortOrder   int    `yaml:"sort_order"`
}

// Load reads and validates a seed file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := validateCatalog(&catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Apply upserts every client, course and module by id inside one
// transaction. Rows that exist are updated in place; a course never moves to
// another client.
func Apply(ctx context.Context, db *gorm.DB, catalog *Catalog, log *utils.Logger) error {
	clients, courses, modules := catalog.rows()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(clients) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "active", "updated_at"}),
			}).Create(&clients).Error; err != nil {
				return fmt.Errorf("upsert clients: %w", err)
			}
		}
		if len(courses) > 0 {
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"title",
					"description",
					"difficulty",
					"estimated_minutes",
					"active",
					"sort_order",
					"updated_at",
				}),
			}).Create(&courses).Error; err != nil {
				return fmt.Errorf("upsert courses: %w", err)
			}
		}
		if len(modules) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"title",
					"content_type",
					"content_url",
					"sort_order",
					"updated_at",
				}),
			}).Create(&modules).Error; err != nil {
				return fmt.Errorf("upsert modules: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("catalog seeded", "clients", len(clients), "courses", len(courses), "modules", len(modules))
	return nil
}

// LoadAndApply is the start-up entry point used when SEED_FILE is set.
func LoadAndApply(ctx context.Context, db *gorm.DB, path string, log *utils.Logger) error {
	catalog, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(ctx, db, catalog, log)
}

func (c *Catalog) rows() ([]models.Client, []models.Course, []models.Module) {
	var (
		clients []models.Client
		courses []models.Course
		modules []models.Module
	)
	for _, yc := range c.Clients {
		clients = append(clients, models.Client{
			ID:     yc.ID,
			Name:   yc.Name,
			Slug:   yc.Slug,
			Active: enabled(yc.Active),
		})
		for _, ycr := range yc.Courses {
			difficulty := models.Difficulty(ycr.Difficulty)
			if difficulty == "" {
				difficulty = models.DifficultyBeginner
			}
			courses = append(courses, models.Course{
				ID:               ycr.ID,
				ClientID:         yc.ID,
				Title:            ycr.Title,
				Description:      ycr.Description,
				Difficulty:       difficulty,
				EstimatedMinutes: ycr.EstimatedMinutes,
				SortOrder:        ycr.SortOrder,
				Active:           enabled(ycr.Active),
			})
			for _, ym := range ycr.Modules {
				modules = append(modules, models.Module{
					ID:          ym.ID,
					CourseID:    ycr.ID,
					Title:       ym.Title,
					ContentType: models.ContentType(ym.ContentType),
					ContentURL:  ym.ContentURL,
					SortOrder:   ym.SortOrder,
				})
			}
		}
	}
	return clients, courses, modules
}

func validateCatalog(c *Catalog) error {
	var problems []string
	seen := map[string]bool{}
	unique := func(kind, id string) {
		key := kind + ":" + id
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate %s id %q", kind, id))
		}
		seen[key] = true
	}

	for i, yc := range c.Clients {
		if strings.TrimSpace(yc.ID) == "" || strings.TrimSpace(yc.Slug) == "" || strings.TrimSpace(yc.Name) == "" {
			problems = append(problems, fmt.Sprintf("clients[%d]: id, name and slug are required", i))
			continue
		}
		unique("client", yc.ID)
		unique("slug", yc.Slug)
		for j, ycr := range yc.Courses {
			if strings.TrimSpace(ycr.ID) == "" || strings.TrimSpace(ycr.Title) == "" {
				problems = append(problems, fmt.Sprintf("%s.courses[%d]: id and title are required", yc.Slug, j))
				continue
			}
			unique("course", ycr.ID)
			if ycr.Difficulty != "" && !models.Difficulty(ycr.Difficulty).Valid() {
				problems = append(problems, fmt.Sprintf("course %s: unknown difficulty %q", ycr.ID, ycr.Difficulty))
			}
			if ycr.EstimatedMinutes < 0 {
				problems = append(problems, fmt.Sprintf("course %s: estimated_minutes must not be negative", ycr.ID))
			}
			for k, ym := range ycr.Modules {
				if strings.TrimSpace(ym.ID) == "" || strings.TrimSpace(ym.Title) == "" {
					problems = append(problems, fmt.Sprintf("course %s.modules[%d]: id and title are required", ycr.ID, k))
					continue
				}
				unique("module", ym.ID)
				if !models.ContentType(ym.ContentType).Valid() {
					problems = append(problems, fmt.Sprintf("module %s: unknown content_type %q", ym.ID, ym.ContentType))
				}
			}
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid seed file: " + strings.Join(problems, "; "))
	}
	return nil
}

func enabled(b *bool) bool {
	return b == nil || *b
}
