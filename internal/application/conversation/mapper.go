package conversation

import (
	"time"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
)

// ToThreadDTO converts a thread aggregate to its API representation
func ToThreadDTO(t *conversation.Thread, includeMessages bool) *inbound.ThreadDTO {
	dto := &inbound.ThreadDTO{
		ID:                      t.ID(),
		OwnerID:                 t.OwnerID(),
		Title:                   t.Title(),
		Preview:                 t.Preview(),
		HasSuccessfulGeneration: t.HasSuccessfulGeneration(),
		LastRecipeTitle:         t.LastRecipeTitle(),
		MessageCount:            t.MessageCount(),
		CreatedAt:               t.CreatedAt().Format(time.RFC3339),
		UpdatedAt:               t.UpdatedAt().Format(time.RFC3339),
	}

	if includeMessages {
		messages := t.Messages()
		dto.Messages = make([]inbound.MessageDTO, len(messages))
		for i, m := range messages {
			dto.Messages[i] = ToMessageDTO(m)
		}
	}

	return dto
}

// ToMessageDTO converts a domain message to its API representation
func ToMessageDTO(m conversation.Message) inbound.MessageDTO {
	dto := inbound.MessageDTO{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		Saved:     m.Saved,
		RecipeID:  m.RecipeID,
	}
	if m.RecipeSnapshot != nil {
		dto.RecipeSnapshot = &inbound.RecipeSnapshotDTO{
			Title:        m.RecipeSnapshot.Title,
			Image:        m.RecipeSnapshot.Image,
			TimeMinutes:  m.RecipeSnapshot.TimeMinutes,
			Ingredients:  m.RecipeSnapshot.Ingredients,
			Instructions: m.RecipeSnapshot.Instructions,
			Nutrition: inbound.NutritionDTO{
				Calories: m.RecipeSnapshot.Nutrition.Calories,
				Protein:  m.RecipeSnapshot.Nutrition.Protein,
				Carbs:    m.RecipeSnapshot.Nutrition.Carbs,
				Fat:      m.RecipeSnapshot.Nutrition.Fat,
			},
		}
	}
	return dto
}

// FromMessageDTO converts an API message back to a domain message. Used on
// the bulk-sync replace path where the client supplies the whole log.
func FromMessageDTO(dto inbound.MessageDTO) conversation.Message {
	msg := conversation.Message{
		ID:       dto.ID,
		Role:     conversation.Role(dto.Role),
		Content:  dto.Content,
		Saved:    dto.Saved,
		RecipeID: dto.RecipeID,
	}

	if ts, err := time.Parse(time.RFC3339, dto.CreatedAt); err == nil {
		msg.CreatedAt = ts
	} else {
		msg.CreatedAt = time.Now()
	}

	if dto.RecipeSnapshot != nil {
		msg.RecipeSnapshot = &conversation.RecipeSnapshot{
			Title:        dto.RecipeSnapshot.Title,
			Image:        dto.RecipeSnapshot.Image,
			TimeMinutes:  dto.RecipeSnapshot.TimeMinutes,
			Ingredients:  dto.RecipeSnapshot.Ingredients,
			Instructions: dto.RecipeSnapshot.Instructions,
			Nutrition: conversation.Nutrition{
				Calories: dto.RecipeSnapshot.Nutrition.Calories,
				Protein:  dto.RecipeSnapshot.Nutrition.Protein,
				Carbs:    dto.RecipeSnapshot.Nutrition.Carbs,
				Fat:      dto.RecipeSnapshot.Nutrition.Fat,
			},
		}
	}

	return msg
}
