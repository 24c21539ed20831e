// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/recipe"
)

// ThreadRepository defines the interface for conversation persistence.
// Messages are an ordered sequence owned by the thread; the only mutations
// exposed are append, full replace, and the saved-flag flip — never
// "patch element at index" — so any storage engine can satisfy the contract.
type ThreadRepository interface {
	// Append upserts: creates the thread with exactly one message when it
	// does not exist, otherwise pushes onto the existing log. Implementations
	// must serialize appends per (ownerID, threadID) so concurrent user/model
	// turns keep their order.
	Append(ctx context.Context, ownerID, threadID string, msg conversation.Message) (*conversation.Thread, error)

	// Replace overwrites the whole message log (bulk client-side sync)
	Replace(ctx context.Context, ownerID, threadID string, messages []conversation.Message) (*conversation.Thread, error)

	FindByID(ctx context.Context, ownerID, threadID string) (*conversation.Thread, error)
	FindByMessage(ctx context.Context, ownerID, messageID string) (*conversation.Thread, error)

	List(ctx context.Context, ownerID string, filter ThreadFilter) ([]*conversation.Thread, int, error)

	// SetSavedFlag flips a message's saved flag and recipe link in place
	SetSavedFlag(ctx context.Context, ownerID, threadID, messageID string, saved bool, recipeID string) error
}

// ThreadFilter defines listing parameters for threads
type ThreadFilter struct {
	SuccessOnly bool
	Offset      int
	Limit       int
}

// SavedRecipeRepository defines the interface for saved recipe persistence
type SavedRecipeRepository interface {
	// Upsert inserts the recipe keyed by (ownerID, messageID). When a record
	// already exists the stored fields win and the existing record is
	// returned, so racing save calls observe the same id.
	Upsert(ctx context.Context, rec *recipe.SavedRecipe) (*recipe.SavedRecipe, error)

	FindByID(ctx context.Context, ownerID, id string) (*recipe.SavedRecipe, error)

	// DeleteByMessage removes the record(s) for (ownerID, messageID) and
	// returns how many were deleted; zero is not an error.
	DeleteByMessage(ctx context.Context, ownerID, messageID string) (int64, error)

	DeleteByID(ctx context.Context, ownerID, id string) error

	// List returns a page of the owner's saved recipes, optionally filtered
	// by a title/ingredient substring.
	List(ctx context.Context, ownerID, query string, offset, limit int) ([]*recipe.SavedRecipe, int, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
