package conversation

import (
	"time"
)

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Nutrition holds per-recipe nutrition estimates. Values are best-effort
// numbers extracted from model output; absent values are normalized to 0 at
// the extractor boundary and stay 0 everywhere downstream.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// RecipeSnapshot is an immutable-at-creation copy of a generated recipe,
// embedded in the model message that produced it.
type RecipeSnapshot struct {
	Title        string    `json:"title"`
	Image        string    `json:"image"`
	TimeMinutes  int       `json:"time_minutes"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Nutrition    Nutrition `json:"nutrition"`
}

// HasContent reports whether the snapshot represents a usable generation:
// a non-empty title, or at least one ingredient, or at least one instruction.
// This single predicate backs both the thread's hasSuccessfulGeneration flag
// and the "usable snapshot to save" check when materializing a recipe.
func (s *RecipeSnapshot) HasContent() bool {
	if s == nil {
		return false
	}
	return s.Title != "" || len(s.Ingredients) > 0 || len(s.Instructions) > 0
}

// Message is a single conversation turn. Messages are owned exclusively by
// their parent Thread and are never edited or removed individually; the only
// mutations flowing through them are the saved/recipeID flags maintained by
// the recipe materializer.
type Message struct {
	ID             string          `json:"id"`
	Role           Role            `json:"role"`
	Content        string          `json:"content,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Saved          bool            `json:"saved,omitempty"`
	RecipeID       string          `json:"recipe_id,omitempty"`
	RecipeSnapshot *RecipeSnapshot `json:"recipe_snapshot,omitempty"`
}

// Validate validates the message
func (m Message) Validate() error {
	if m.ID == "" {
		return ErrEmptyMessageID
	}
	if m.Role != RoleUser && m.Role != RoleModel {
		return ErrInvalidRole
	}
	return nil
}

// IsSuccessfulGeneration reports whether the message is a model turn that
// produced a usable recipe.
func (m Message) IsSuccessfulGeneration() bool {
	return m.Role == RoleModel && m.RecipeSnapshot.HasContent()
}
