// Package gorm provides GORM model definitions and repository
// implementations for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThreadModel represents the GORM model for conversation threads. The message
// log is stored as a single JSON document column, so appends and replaces are
// whole-document writes serialized per (owner_id, thread_id).
type ThreadModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID  string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_threads_owner_thread"`
	ThreadID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_threads_owner_thread"`

	// Stored as text rather than a native json column so substring lookups
	// by embedded message id work identically on sqlite and postgres
	Messages MessageLog `gorm:"type:text"`

	// Derived columns, recomputed from the log on every write; queryable
	// without unpacking the document
	Title                   string `gorm:"type:varchar(255)"`
	Preview                 string `gorm:"type:varchar(255)"`
	LastRecipeTitle         string `gorm:"type:varchar(255)"`
	MessageCount            int    `gorm:"default:0"`
	HasSuccessfulGeneration bool   `gorm:"default:false;index"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`
}

// SavedRecipeModel represents the GORM model for saved recipes
type SavedRecipeModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID   string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_saved_recipes_owner_message"`
	MessageID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_saved_recipes_owner_message"`

	Title        string      `gorm:"type:varchar(255);not null;index"`
	Image        string      `gorm:"type:text"`
	TimeMinutes  int         `gorm:"default:0"`
	Ingredients  StringSlice `gorm:"type:text"`
	Instructions StringSlice `gorm:"type:text"`

	Calories float64 `gorm:"default:0"`
	Protein  float64 `gorm:"default:0"`
	Carbs    float64 `gorm:"default:0"`
	Fat      float64 `gorm:"default:0"`

	CreatedAt time.Time `gorm:"index"`
}

// MessageDoc is the persisted form of one conversation message
type MessageDoc struct {
	ID             string       `json:"id"`
	Role           string       `json:"role"`
	Content        string       `json:"content,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	Saved          bool         `json:"saved,omitempty"`
	RecipeID       string       `json:"recipe_id,omitempty"`
	RecipeSnapshot *SnapshotDoc `json:"recipe_snapshot,omitempty"`
}

// SnapshotDoc is the persisted form of an embedded recipe snapshot
type SnapshotDoc struct {
	Title        string       `json:"title"`
	Image        string       `json:"image"`
	TimeMinutes  int          `json:"time_minutes"`
	Ingredients  []string     `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    NutritionDoc `json:"nutrition"`
}

// NutritionDoc is the persisted form of nutrition estimates
type NutritionDoc struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MessageLog custom type for the serialized message document
type MessageLog []MessageDoc

// Scan implements the sql.Scanner interface
func (m *MessageLog) Scan(value interface{}) error {
	if value == nil {
		*m = MessageLog{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into MessageLog", value)
	}
}

// Value implements the driver.Valuer interface
func (m MessageLog) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for ThreadModel
func (t *ThreadModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for SavedRecipeModel
func (r *SavedRecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (ThreadModel) TableName() string {
	return "threads"
}

func (SavedRecipeModel) TableName() string {
	return "saved_recipes"
}
