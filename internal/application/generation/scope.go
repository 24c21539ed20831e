package generation

import "strings"

// ScopeResult is the classifier's verdict on a piece of user text
type ScopeResult struct {
	InScope bool
	Reason  string
}

// denyTokens reject a request outright, regardless of any food terms present.
// Tokens are matched as case-insensitive substrings, so they are chosen to
// avoid collisions with cooking vocabulary ("stock market" not "stock",
// no "app" because of "apple").
var denyTokens = []string{
	// programming
	"javascript", "typescript", "python script", "react", "angular", "vue",
	"database", "server", "frontend", "backend", "debug", "compile",
	"deploy", "kubernetes", "docker", "source code", "algorithm", "sql",
	"html", "css", "regex", "software", "website", "programming",
	// travel
	"flight", "hotel", "itinerary", "visa", "passport", "vacation",
	"road trip", "airline",
	// finance
	"stock market", "invest", "crypto", "bitcoin", "loan", "mortgage",
	"tax return", "portfolio", "interest rate",
	// entertainment
	"movie", "netflix", "lyrics", "playlist", "video game", "episode",
	"concert ticket",
	// medical / legal
	"diagnos", "prescription", "symptom", "dosage", "lawsuit", "lawyer",
	"attorney", "legal advice",
}

// allowTokens admit a request when no deny token fired. Cooking verbs,
// nutrition terms and meal-type names; deliberately not an ingredient
// dictionary, since meal type is classified alongside the free text.
var allowTokens = []string{
	// cooking verbs
	"cook", "bake", "roast", "grill", "fry", "boil", "simmer", "saute",
	"sauté", "steam", "marinate", "whisk", "knead", "chop", "blend",
	"season", "prepare",
	// nutrition and diet terms
	"calorie", "protein", "carb", "nutrition", "nutrient", "vegan",
	"vegetarian", "gluten", "keto", "paleo", "dairy", "low-fat", "healthy",
	"macro",
	// meal types
	"breakfast", "lunch", "dinner", "brunch", "snack", "dessert",
	"appetizer", "side dish", "main course",
	// general food-domain nouns
	"recipe", "meal", "food", "dish", "ingredient", "cuisine", "eat",
	"pantry", "kitchen", "leftover", "sauce", "soup", "salad", "stew",
	"dough", "spice", "flavor", "flavour", "oven", "stove", "serving",
}

// ScopeClassifier is a conservative heuristic pre-filter run before any model
// call. It is not the authority on scope; the model may still declare a
// request out-of-scope on its own.
type ScopeClassifier struct{}

// NewScopeClassifier creates a scope classifier
func NewScopeClassifier() *ScopeClassifier {
	return &ScopeClassifier{}
}

// Classify decides whether text belongs to the food domain. Empty input is
// out-of-scope; a deny token rejects even when allow tokens are present;
// absent any allow token the default is out-of-scope.
func (c *ScopeClassifier) Classify(text string) ScopeResult {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return ScopeResult{InScope: false, Reason: "empty request"}
	}

	for _, token := range denyTokens {
		if strings.Contains(lowered, token) {
			return ScopeResult{InScope: false, Reason: "request mentions " + token}
		}
	}

	for _, token := range allowTokens {
		if strings.Contains(lowered, token) {
			return ScopeResult{InScope: true}
		}
	}

	return ScopeResult{InScope: false, Reason: "no food-related terms found"}
}
