package gorm

import (
	"github.com/google/uuid"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/recipe"
)

// Mappers between domain entities and GORM models. The domain side is the
// source of truth for derived fields; models only mirror them into queryable
// columns.

// ThreadToModel copies a thread aggregate into its persisted form
func ThreadToModel(t *conversation.Thread, model *ThreadModel) {
	model.OwnerID = t.OwnerID()
	model.ThreadID = t.ID()
	model.Messages = messagesToDocs(t.Messages())
	model.Title = t.Title()
	model.Preview = t.Preview()
	model.LastRecipeTitle = t.LastRecipeTitle()
	model.MessageCount = t.MessageCount()
	model.HasSuccessfulGeneration = t.HasSuccessfulGeneration()
	model.CreatedAt = t.CreatedAt()
	model.UpdatedAt = t.UpdatedAt()
}

// ModelToThread rehydrates a thread aggregate from its persisted form
func ModelToThread(model *ThreadModel) *conversation.Thread {
	return conversation.Rehydrate(
		model.OwnerID,
		model.ThreadID,
		docsToMessages(model.Messages),
		model.CreatedAt,
		model.UpdatedAt,
		model.HasSuccessfulGeneration,
	)
}

func messagesToDocs(messages []conversation.Message) MessageLog {
	docs := make(MessageLog, len(messages))
	for i, m := range messages {
		docs[i] = MessageDoc{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Saved:     m.Saved,
			RecipeID:  m.RecipeID,
		}
		if m.RecipeSnapshot != nil {
			docs[i].RecipeSnapshot = &SnapshotDoc{
				Title:        m.RecipeSnapshot.Title,
				Image:        m.RecipeSnapshot.Image,
				TimeMinutes:  m.RecipeSnapshot.TimeMinutes,
				Ingredients:  m.RecipeSnapshot.Ingredients,
				Instructions: m.RecipeSnapshot.Instructions,
				Nutrition: NutritionDoc{
					Calories: m.RecipeSnapshot.Nutrition.Calories,
					Protein:  m.RecipeSnapshot.Nutrition.Protein,
					Carbs:    m.RecipeSnapshot.Nutrition.Carbs,
					Fat:      m.RecipeSnapshot.Nutrition.Fat,
				},
			}
		}
	}
	return docs
}

func docsToMessages(docs MessageLog) []conversation.Message {
	messages := make([]conversation.Message, len(docs))
	for i, d := range docs {
		messages[i] = conversation.Message{
			ID:        d.ID,
			Role:      conversation.Role(d.Role),
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
			Saved:     d.Saved,
			RecipeID:  d.RecipeID,
		}
		if d.RecipeSnapshot != nil {
			messages[i].RecipeSnapshot = &conversation.RecipeSnapshot{
				Title:        d.RecipeSnapshot.Title,
				Image:        d.RecipeSnapshot.Image,
				TimeMinutes:  d.RecipeSnapshot.TimeMinutes,
				Ingredients:  d.RecipeSnapshot.Ingredients,
				Instructions: d.RecipeSnapshot.Instructions,
				Nutrition: conversation.Nutrition{
					Calories: d.RecipeSnapshot.Nutrition.Calories,
					Protein:  d.RecipeSnapshot.Nutrition.Protein,
					Carbs:    d.RecipeSnapshot.Nutrition.Carbs,
					Fat:      d.RecipeSnapshot.Nutrition.Fat,
				},
			}
		}
	}
	return messages
}

// SavedRecipeToModel copies a saved recipe into its persisted form
func SavedRecipeToModel(r *recipe.SavedRecipe) *SavedRecipeModel {
	id, err := uuid.Parse(r.ID())
	if err != nil {
		id = uuid.New()
	}
	return &SavedRecipeModel{
		ID:           id,
		OwnerID:      r.OwnerID(),
		MessageID:    r.MessageID(),
		Title:        r.Title(),
		Image:        r.Image(),
		TimeMinutes:  r.TimeMinutes(),
		Ingredients:  StringSlice(r.Ingredients()),
		Instructions: StringSlice(r.Instructions()),
		Calories:     r.Nutrition().Calories,
		Protein:      r.Nutrition().Protein,
		Carbs:        r.Nutrition().Carbs,
		Fat:          r.Nutrition().Fat,
		CreatedAt:    r.CreatedAt(),
	}
}

// ModelToSavedRecipe rehydrates a saved recipe from its persisted form
func ModelToSavedRecipe(model *SavedRecipeModel) *recipe.SavedRecipe {
	return recipe.Rehydrate(
		model.ID.String(),
		model.OwnerID,
		model.MessageID,
		model.Title,
		model.Image,
		model.TimeMinutes,
		model.Ingredients,
		model.Instructions,
		conversation.Nutrition{
			Calories: model.Calories,
			Protein:  model.Protein,
			Carbs:    model.Carbs,
			Fat:      model.Fat,
		},
		model.CreatedAt,
	)
}
