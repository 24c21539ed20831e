// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
)

// GenerationService drives the conversational recipe-generation pipeline:
// scope filter, prompt build, model call, extraction, and the turn append.
type GenerationService interface {
	GenerateTurn(ctx context.Context, cmd GenerateTurnCommand) (*TurnResult, error)
}

// ConversationService exposes thread queries and the bulk-sync replace
type ConversationService interface {
	ListThreads(ctx context.Context, ownerID string, query ThreadListQuery) (*ThreadList, error)
	GetThread(ctx context.Context, ownerID, threadID string) (*ThreadDTO, error)
	ReplaceThread(ctx context.Context, ownerID, threadID string, messages []MessageDTO) (*ThreadDTO, error)
}

// RecipeService materializes message snapshots into saved recipes
type RecipeService interface {
	SaveFromMessage(ctx context.Context, cmd SaveRecipeCommand) (*SavedRecipeDTO, error)
	Unsave(ctx context.Context, ownerID, threadID, messageID string) error
	ListSaved(ctx context.Context, ownerID string, query RecipeListQuery) (*SavedRecipeList, error)
	DeleteSaved(ctx context.Context, ownerID, recipeID string) error
}

// Command objects for operations

// GenerateTurnCommand contains the input for one conversational turn
type GenerateTurnCommand struct {
	OwnerID  string
	ThreadID string
	UserText string
	MealType string
	Diet     []string
	History  []HistoryEntry
}

// HistoryEntry is one prior exchange supplied by the client
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SaveRecipeCommand contains the input for materializing a recipe
type SaveRecipeCommand struct {
	OwnerID   string
	ThreadID  string
	MessageID string

	// Optional field overrides; nil falls through to the snapshot value
	Title        *string
	Image        *string
	TimeMinutes  *int
	Ingredients  []string
	Instructions []string
}

// Query objects

// ThreadListQuery defines thread listing parameters
type ThreadListQuery struct {
	Page        int
	PageSize    int
	SuccessOnly bool
}

// RecipeListQuery defines saved recipe listing parameters
type RecipeListQuery struct {
	Page     int
	PageSize int
	Search   string
}

// Turn outcomes

// TurnOutcome classifies how a generation turn ended
type TurnOutcome string

const (
	// OutcomeGenerated means a recipe was produced and both turns appended
	OutcomeGenerated TurnOutcome = "generated"

	// OutcomeScopeRejected means the heuristic pre-filter declined the
	// request before any model call
	OutcomeScopeRejected TurnOutcome = "scope_rejected"

	// OutcomeModelScopeRejected means the model itself declared the request
	// non-food after a model call was spent
	OutcomeModelScopeRejected TurnOutcome = "model_scope_rejected"

	// OutcomeIncomplete means the model returned well-formed JSON that
	// carried no usable recipe content
	OutcomeIncomplete TurnOutcome = "incomplete"
)

// TurnResult is the outcome of one generation turn. Scope rejections and
// incomplete generations are normal terminal outcomes: the user message is
// preserved in history and ModelMessage is nil.
type TurnResult struct {
	Outcome      TurnOutcome `json:"outcome"`
	Reason       string      `json:"reason,omitempty"`
	UserMessage  MessageDTO  `json:"user_message"`
	ModelMessage *MessageDTO `json:"model_message,omitempty"`
	Thread       *ThreadDTO  `json:"thread,omitempty"`
}

// Response DTOs

// NutritionDTO for nutrition estimates
type NutritionDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// RecipeSnapshotDTO for embedded recipe snapshots
type RecipeSnapshotDTO struct {
	Title        string       `json:"title"`
	Image        string       `json:"image"`
	TimeMinutes  int          `json:"time_minutes"`
	Ingredients  []string     `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    NutritionDTO `json:"nutrition"`
}

// MessageDTO for conversation messages
type MessageDTO struct {
	ID             string             `json:"id"`
	Role           string             `json:"role"`
	Content        string             `json:"content,omitempty"`
	CreatedAt      string             `json:"created_at"`
	Saved          bool               `json:"saved"`
	RecipeID       string             `json:"recipe_id,omitempty"`
	RecipeSnapshot *RecipeSnapshotDTO `json:"recipe_snapshot,omitempty"`
}

// ThreadDTO for conversation threads
type ThreadDTO struct {
	ID                      string       `json:"id"`
	OwnerID                 string       `json:"owner_id"`
	Title                   string       `json:"title"`
	Preview                 string       `json:"preview"`
	Messages                []MessageDTO `json:"messages,omitempty"`
	HasSuccessfulGeneration bool         `json:"has_successful_generation"`
	LastRecipeTitle         string       `json:"last_recipe_title,omitempty"`
	MessageCount            int          `json:"message_count"`
	CreatedAt               string       `json:"created_at"`
	UpdatedAt               string       `json:"updated_at"`
}

// ThreadList for paginated thread results
type ThreadList struct {
	Threads    []ThreadDTO `json:"threads"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// SavedRecipeDTO for saved recipes
type SavedRecipeDTO struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	MessageID    string       `json:"message_id"`
	Title        string       `json:"title"`
	Image        string       `json:"image"`
	TimeMinutes  int          `json:"time_minutes"`
	Ingredients  []string     `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Nutrition    NutritionDTO `json:"nutrition"`
	CreatedAt    string       `json:"created_at"`
}

// SavedRecipeList for paginated saved recipe results
type SavedRecipeList struct {
	Recipes    []SavedRecipeDTO `json:"recipes"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}
