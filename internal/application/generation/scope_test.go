package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeClassifier(t *testing.T) {
	classifier := NewScopeClassifier()

	tests := []struct {
		name    string
		text    string
		inScope bool
	}{
		{"CookingRequest_ShouldBeInScope", "how do I cook adobo", true},
		{"RecipeRequest_ShouldBeInScope", "give me a recipe for pancit", true},
		{"MealTypeAlone_ShouldBeInScope", "dinner", true},
		{"NutritionQuestion_ShouldBeInScope", "high protein breakfast ideas", true},
		{"AccentedCookingVerb_ShouldBeInScope", "how to sauté mushrooms", true},
		{"ProgrammingRequest_ShouldBeRejected", "fix my react app", false},
		{"TravelRequest_ShouldBeRejected", "book me a flight to Cebu", false},
		{"FinanceRequest_ShouldBeRejected", "should I invest in crypto", false},
		{"EntertainmentRequest_ShouldBeRejected", "recommend a movie for tonight", false},
		{"MedicalRequest_ShouldBeRejected", "diagnose my symptoms", false},
		{"EmptyInput_ShouldBeRejected", "", false},
		{"WhitespaceOnly_ShouldBeRejected", "   \t  ", false},
		{"NoFoodTerms_ShouldBeRejectedByDefault", "tell me about the weather", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Classify(tt.text)
			assert.Equal(t, tt.inScope, result.InScope)
			if !tt.inScope {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestScopeClassifierDenyBeatsAllow(t *testing.T) {
	classifier := NewScopeClassifier()

	// A deny token rejects even when food terms are present
	result := classifier.Classify("build me a recipe database in sql")
	assert.False(t, result.InScope)
	assert.NotEmpty(t, result.Reason)
}

func TestScopeClassifierAvoidsFoodCollisions(t *testing.T) {
	classifier := NewScopeClassifier()

	// "apple" must not trip a programming token, "chicken stock" must not
	// trip a finance token
	assert.True(t, classifier.Classify("apple pie recipe").InScope)
	assert.True(t, classifier.Classify("soup with chicken stock").InScope)
}

func TestScopeClassifierIsCaseInsensitive(t *testing.T) {
	classifier := NewScopeClassifier()

	assert.True(t, classifier.Classify("RECIPE for Sinigang").InScope)
	assert.False(t, classifier.Classify("Debug my JavaScript").InScope)
}
