// Package recipe contains the domain logic for saved recipes: standalone,
// independently queryable records promoted from a conversation message's
// embedded recipe snapshot.
package recipe

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
)

// titleMaxLen caps the stored title; the column is varchar(255) while
// model-supplied snapshot titles are unvalidated.
const titleMaxLen = 255

// SavedRecipe is a materialized copy of a message's recipe snapshot. It is
// keyed by (ownerID, messageID): re-saving the same message is idempotent and
// never overwrites the first-inserted fields.
type SavedRecipe struct {
	id        string
	ownerID   string
	messageID string

	title        string
	image        string
	timeMinutes  int
	ingredients  []string
	instructions []string
	nutrition    conversation.Nutrition

	createdAt time.Time
}

// Overrides carries caller-supplied field replacements applied at save time.
// Nil fields fall through to the snapshot value.
type Overrides struct {
	Title        *string
	Image        *string
	TimeMinutes  *int
	Ingredients  []string
	Instructions []string
}

// NewFromSnapshot materializes a saved recipe from a message snapshot
func NewFromSnapshot(ownerID, messageID string, snap *conversation.RecipeSnapshot, ov Overrides) (*SavedRecipe, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwnerID
	}
	if messageID == "" {
		return nil, ErrEmptyMessageID
	}
	if !snap.HasContent() {
		return nil, ErrNoSnapshot
	}

	r := &SavedRecipe{
		id:           uuid.NewString(),
		ownerID:      ownerID,
		messageID:    messageID,
		title:        snap.Title,
		image:        snap.Image,
		timeMinutes:  snap.TimeMinutes,
		ingredients:  snap.Ingredients,
		instructions: snap.Instructions,
		nutrition:    snap.Nutrition,
		createdAt:    time.Now(),
	}

	if ov.Title != nil {
		r.title = *ov.Title
	}
	if ov.Image != nil {
		r.image = *ov.Image
	}
	if ov.TimeMinutes != nil {
		r.timeMinutes = *ov.TimeMinutes
	}
	if ov.Ingredients != nil {
		r.ingredients = ov.Ingredients
	}
	if ov.Instructions != nil {
		r.instructions = ov.Instructions
	}

	if utf8.RuneCountInString(r.title) > titleMaxLen {
		r.title = string([]rune(r.title)[:titleMaxLen])
	}

	return r, nil
}

// Rehydrate reconstructs a saved recipe from persisted state
func Rehydrate(id, ownerID, messageID, title, image string, timeMinutes int,
	ingredients, instructions []string, nutrition conversation.Nutrition, createdAt time.Time) *SavedRecipe {
	return &SavedRecipe{
		id:           id,
		ownerID:      ownerID,
		messageID:    messageID,
		title:        title,
		image:        image,
		timeMinutes:  timeMinutes,
		ingredients:  ingredients,
		instructions: instructions,
		nutrition:    nutrition,
		createdAt:    createdAt,
	}
}

// ID returns the server-generated identifier
func (r *SavedRecipe) ID() string {
	return r.id
}

// OwnerID returns the owning user's identifier
func (r *SavedRecipe) OwnerID() string {
	return r.ownerID
}

// MessageID returns the originating message's identifier
func (r *SavedRecipe) MessageID() string {
	return r.messageID
}

// Title returns the recipe title
func (r *SavedRecipe) Title() string {
	return r.title
}

// Image returns the recipe image URL
func (r *SavedRecipe) Image() string {
	return r.image
}

// TimeMinutes returns the estimated preparation time
func (r *SavedRecipe) TimeMinutes() int {
	return r.timeMinutes
}

// Ingredients returns the ingredient list
func (r *SavedRecipe) Ingredients() []string {
	return r.ingredients
}

// Instructions returns the instruction steps
func (r *SavedRecipe) Instructions() []string {
	return r.instructions
}

// Nutrition returns the nutrition estimates
func (r *SavedRecipe) Nutrition() conversation.Nutrition {
	return r.nutrition
}

// CreatedAt returns when the recipe was saved
func (r *SavedRecipe) CreatedAt() time.Time {
	return r.createdAt
}
