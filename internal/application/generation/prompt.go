package generation

import (
	"fmt"
	"strings"
)

// PromptInput carries the pieces assembled into a model instruction
type PromptInput struct {
	UserText string
	MealType string
	Diet     []string
}

// PromptBuilder assembles deterministic model instructions with an explicit
// output contract the extractor can rely on. No I/O, no side effects.
type PromptBuilder struct {
	cuisineDefault string
}

// NewPromptBuilder creates a prompt builder biased toward a default cuisine
func NewPromptBuilder(cuisineDefault string) *PromptBuilder {
	if cuisineDefault == "" {
		cuisineDefault = "international"
	}
	return &PromptBuilder{cuisineDefault: cuisineDefault}
}

const outputContract = `CRITICAL: You must respond with ONLY a valid JSON object in the exact format shown below. Do not include any explanatory text, markdown formatting, or other content outside the JSON.

Required JSON format:
{
  "title": "Recipe Name",
  "image": "https URL of a representative photo, or empty string",
  "time_minutes": 30,
  "ingredients": [
    "2 tbsp olive oil",
    "1 lb chicken breast"
  ],
  "instructions": [
    "Step 1: Detailed instruction",
    "Step 2: Next step"
  ],
  "nutrition": {
    "calories": 450,
    "protein": 30,
    "carbs": 40,
    "fat": 15
  }
}

If the request is not about food, cooking, or nutrition, respond instead with exactly:
{"error": "OUT_OF_SCOPE", "reason": "brief explanation"}`

// Build produces the full instruction string for one generation turn.
// Meal type defaults to "any" and diet to "no restrictions" when unset.
func (b *PromptBuilder) Build(input PromptInput) string {
	mealType := strings.TrimSpace(input.MealType)
	if mealType == "" {
		mealType = "any"
	}

	diet := "no restrictions"
	if len(input.Diet) > 0 {
		diet = strings.Join(input.Diet, ", ")
	}

	var sb strings.Builder
	sb.WriteString("You are an expert chef. Create one complete recipe for the request below.\n\n")
	sb.WriteString(outputContract)
	sb.WriteString(fmt.Sprintf("\n\nMeal type: %s", mealType))
	sb.WriteString(fmt.Sprintf("\nDietary restrictions: %s", diet))
	sb.WriteString(fmt.Sprintf("\nCuisine: if the request names a cuisine, honor it; otherwise lean toward %s cooking.", b.cuisineDefault))
	sb.WriteString(fmt.Sprintf("\n\nRequest: %s", input.UserText))
	sb.WriteString("\n\nRemember: Respond with ONLY valid JSON. No additional text or formatting.")

	return sb.String()
}

// BuildRetry produces the amended instruction used for the single bounded
// retry after a parse failure, restating the format demand up front.
func (b *PromptBuilder) BuildRetry(input PromptInput) string {
	return "Your previous reply was not valid JSON. " +
		"Respond again with STRICT JSON ONLY: a single JSON object, no markdown fences, no prose before or after it.\n\n" +
		b.Build(input)
}
