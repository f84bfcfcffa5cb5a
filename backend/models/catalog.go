package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type ContentType string

const (
	ContentVideo       ContentType = "video"
	ContentWebsite     ContentType = "website"
	ContentQuiz        ContentType = "quiz"
	ContentInteractive ContentType = "interactive"
	ContentDocument    ContentType = "document"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentWebsite, ContentQuiz, ContentInteractive, ContentDocument:
		return true
	}
	return false
}

// Client is a tenant organisation of the training program. Clients are
// deactivated, never deleted.
type Client struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:128;not null;uniqueIndex" json:"slug"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Course struct {
	ID               string     `gorm:"primaryKey;size:64" json:"id"`
	ClientID         string     `gorm:"size:64;not null;index" json:"client_id"`
	Client           *Client    `gorm:"foreignKey:ClientID;references:ID" json:"-"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Difficulty       Difficulty `gorm:"size:32;not null" json:"difficulty"`
	EstimatedMinutes int        `gorm:"not null" json:"estimated_minutes"`
	Active           bool       `gorm:"not null" json:"active"`
	SortOrder        int        `gorm:"not null;index" json:"sort_order"`
	Modules          []Module   `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Module struct {
	ID          string      `gorm:"primaryKey;size:64" json:"id"`
	CourseID    string      `gorm:"size:64;not null;index" json:"course_id"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	ContentType ContentType `gorm:"size:32;not null" json:"content_type"`
	ContentURL  string      `gorm:"size:1024" json:"content_url,omitempty"`
	SortOrder   int         `gorm:"not null" json:"sort_order"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
