package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/richardjr822/food-findr/internal/domain/recipe"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
)

// SavedRecipeRepository implements the saved recipe repository using GORM
type SavedRecipeRepository struct {
	db *gorm.DB
}

// NewSavedRecipeRepository creates a new saved recipe repository
func NewSavedRecipeRepository(db *gorm.DB) outbound.SavedRecipeRepository {
	return &SavedRecipeRepository{db: db}
}

// Upsert inserts the recipe keyed by (owner_id, message_id) with insert-only
// semantics: on conflict the stored fields win, and the existing record is
// read back so racing save calls observe the same id.
func (r *SavedRecipeRepository) Upsert(ctx context.Context, rec *recipe.SavedRecipe) (*recipe.SavedRecipe, error) {
	model := SavedRecipeToModel(rec)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return nil, result.Error
	}

	var stored SavedRecipeModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND message_id = ?", rec.OwnerID(), rec.MessageID()).
		First(&stored).Error; err != nil {
		return nil, err
	}

	return ModelToSavedRecipe(&stored), nil
}

// FindByID finds a saved recipe by id, scoped to its owner
func (r *SavedRecipeRepository) FindByID(ctx context.Context, ownerID, id string) (*recipe.SavedRecipe, error) {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return nil, recipe.ErrRecipeNotFound
	}

	var model SavedRecipeModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, recipeID).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToSavedRecipe(&model), nil
}

// DeleteByMessage removes the record(s) for (owner_id, message_id) and
// returns how many were deleted; zero is not an error.
func (r *SavedRecipeRepository) DeleteByMessage(ctx context.Context, ownerID, messageID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND message_id = ?", ownerID, messageID).
		Delete(&SavedRecipeModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByID removes a saved recipe by id
func (r *SavedRecipeRepository) DeleteByID(ctx context.Context, ownerID, id string) error {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return recipe.ErrRecipeNotFound
	}

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, recipeID).
		Delete(&SavedRecipeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// List returns a page of the owner's saved recipes, newest first, optionally
// filtered by a title/ingredient substring.
func (r *SavedRecipeRepository) List(ctx context.Context, ownerID, query string, offset, limit int) ([]*recipe.SavedRecipe, int, error) {
	q := r.db.WithContext(ctx).Model(&SavedRecipeModel{}).
		Where("owner_id = ?", ownerID)

	if query != "" {
		term := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ?", term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []SavedRecipeModel
	result := q.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	recipes := make([]*recipe.SavedRecipe, len(models))
	for i := range models {
		recipes[i] = ModelToSavedRecipe(&models[i])
	}

	return recipes, int(total), nil
}
