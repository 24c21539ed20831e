// Package recipe implements the application service that materializes a
// message's embedded recipe snapshot into a standalone saved recipe, and
// keeps the originating message's saved flag consistent with it.
package recipe

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appconversation "github.com/richardjr822/food-findr/internal/application/conversation"
	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/recipe"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
	appErrors "github.com/richardjr822/food-findr/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service implements inbound.RecipeService
type Service struct {
	recipes outbound.SavedRecipeRepository
	threads outbound.ThreadRepository
	cache   outbound.CacheRepository
	logger  *zap.Logger
}

// NewService creates a recipe service
func NewService(
	recipes outbound.SavedRecipeRepository,
	threads outbound.ThreadRepository,
	cache outbound.CacheRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes: recipes,
		threads: threads,
		cache:   cache,
		logger:  logger.Named("recipe-service"),
	}
}

// SaveFromMessage promotes a message's recipe snapshot into a saved recipe.
// The upsert is keyed by (owner, message): re-saving is idempotent and never
// overwrites the first-inserted fields, and racing save calls observe the
// same recipe id. The message's saved flag is flipped either way.
func (s *Service) SaveFromMessage(ctx context.Context, cmd inbound.SaveRecipeCommand) (*inbound.SavedRecipeDTO, error) {
	if cmd.OwnerID == "" {
		return nil, appErrors.NewUnauthorizedError("missing owner identity")
	}
	if cmd.ThreadID == "" || cmd.MessageID == "" {
		return nil, appErrors.NewValidationError("thread id and message id are required")
	}

	thread, err := s.threads.FindByID(ctx, cmd.OwnerID, cmd.ThreadID)
	if err != nil {
		if errors.Is(err, conversation.ErrThreadNotFound) {
			return nil, appErrors.NewThreadNotFoundError(cmd.ThreadID)
		}
		return nil, appErrors.NewDatabaseError("find thread", err)
	}

	msg, err := thread.FindMessage(cmd.MessageID)
	if err != nil {
		return nil, appErrors.NewMessageNotFoundError(cmd.MessageID)
	}

	rec, err := recipe.NewFromSnapshot(cmd.OwnerID, cmd.MessageID, msg.RecipeSnapshot, recipe.Overrides{
		Title:        cmd.Title,
		Image:        cmd.Image,
		TimeMinutes:  cmd.TimeMinutes,
		Ingredients:  cmd.Ingredients,
		Instructions: cmd.Instructions,
	})
	if err != nil {
		if errors.Is(err, recipe.ErrNoSnapshot) {
			return nil, appErrors.NewValidationError("message has no usable recipe snapshot")
		}
		return nil, appErrors.NewValidationError(err.Error())
	}

	stored, err := s.recipes.Upsert(ctx, rec)
	if err != nil {
		return nil, appErrors.NewDatabaseError("save recipe", err)
	}

	if err := s.threads.SetSavedFlag(ctx, cmd.OwnerID, cmd.ThreadID, cmd.MessageID, true, stored.ID()); err != nil {
		return nil, appErrors.NewDatabaseError("mark message saved", err)
	}
	s.invalidateThread(ctx, cmd.OwnerID, cmd.ThreadID)

	s.logger.Info("recipe saved",
		zap.String("recipe_id", stored.ID()),
		zap.String("message_id", cmd.MessageID),
	)

	return toSavedRecipeDTO(stored), nil
}

// Unsave deletes the saved recipe(s) for a message and clears the message's
// saved flag. Both steps run even when the delete finds nothing; the desired
// end state is "not saved" either way.
func (s *Service) Unsave(ctx context.Context, ownerID, threadID, messageID string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorizedError("missing owner identity")
	}
	if threadID == "" || messageID == "" {
		return appErrors.NewValidationError("thread id and message id are required")
	}

	deleted, delErr := s.recipes.DeleteByMessage(ctx, ownerID, messageID)

	if err := s.threads.SetSavedFlag(ctx, ownerID, threadID, messageID, false, ""); err != nil {
		return appErrors.NewDatabaseError("clear saved flag", err)
	}
	s.invalidateThread(ctx, ownerID, threadID)

	if delErr != nil {
		return appErrors.NewDatabaseError("delete saved recipe", delErr)
	}

	s.logger.Info("recipe unsaved",
		zap.String("message_id", messageID),
		zap.Int64("deleted", deleted),
	)
	return nil
}

// ListSaved returns a page of the owner's saved recipes, optionally filtered
// by a title/ingredient substring.
func (s *Service) ListSaved(ctx context.Context, ownerID string, query inbound.RecipeListQuery) (*inbound.SavedRecipeList, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorizedError("missing owner identity")
	}

	page, pageSize := normalizePage(query.Page, query.PageSize)

	recipes, total, err := s.recipes.List(ctx, ownerID, query.Search, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list saved recipes", err)
	}

	dtos := make([]inbound.SavedRecipeDTO, len(recipes))
	for i, r := range recipes {
		dtos[i] = *toSavedRecipeDTO(r)
	}

	return &inbound.SavedRecipeList{
		Recipes:    dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// DeleteSaved removes a saved recipe by id and clears the saved flag on its
// originating message, preserving the invariant that a message is flagged
// saved iff a live saved recipe references it.
func (s *Service) DeleteSaved(ctx context.Context, ownerID, recipeID string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorizedError("missing owner identity")
	}
	if recipeID == "" {
		return appErrors.NewValidationError("recipe id is required")
	}

	rec, err := s.recipes.FindByID(ctx, ownerID, recipeID)
	if err != nil {
		if errors.Is(err, recipe.ErrRecipeNotFound) {
			return appErrors.NewRecipeNotFoundError(recipeID)
		}
		return appErrors.NewDatabaseError("find saved recipe", err)
	}

	if err := s.recipes.DeleteByID(ctx, ownerID, recipeID); err != nil {
		return appErrors.NewDatabaseError("delete saved recipe", err)
	}

	// The saved recipe does not record its thread, so resolve it through the
	// originating message before clearing the flag.
	thread, err := s.threads.FindByMessage(ctx, ownerID, rec.MessageID())
	if err == nil {
		if err := s.threads.SetSavedFlag(ctx, ownerID, thread.ID(), rec.MessageID(), false, ""); err != nil {
			s.logger.Warn("could not clear saved flag after delete",
				zap.String("message_id", rec.MessageID()),
				zap.Error(err),
			)
		}
		s.invalidateThread(ctx, ownerID, thread.ID())
	} else if !errors.Is(err, conversation.ErrThreadNotFound) {
		s.logger.Warn("could not resolve thread for deleted recipe",
			zap.String("message_id", rec.MessageID()),
			zap.Error(err),
		)
	}

	s.logger.Info("saved recipe deleted", zap.String("recipe_id", recipeID))
	return nil
}

func (s *Service) invalidateThread(ctx context.Context, ownerID, threadID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, appconversation.ThreadCacheKey(ownerID, threadID)); err != nil {
		s.logger.Debug("thread cache invalidation failed", zap.Error(err))
	}
}

func toSavedRecipeDTO(r *recipe.SavedRecipe) *inbound.SavedRecipeDTO {
	return &inbound.SavedRecipeDTO{
		ID:           r.ID(),
		OwnerID:      r.OwnerID(),
		MessageID:    r.MessageID(),
		Title:        r.Title(),
		Image:        r.Image(),
		TimeMinutes:  r.TimeMinutes(),
		Ingredients:  r.Ingredients(),
		Instructions: r.Instructions(),
		Nutrition: inbound.NutritionDTO{
			Calories: r.Nutrition().Calories,
			Protein:  r.Nutrition().Protein,
			Carbs:    r.Nutrition().Carbs,
			Fat:      r.Nutrition().Fat,
		},
		CreatedAt: r.CreatedAt().Format(time.RFC3339),
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
