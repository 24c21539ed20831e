package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
)

// ErrNoJSON means no parseable JSON object could be located in the model's
// reply. The caller owns the retry budget; a second occurrence is terminal.
var ErrNoJSON = errors.New("no valid JSON object found in model response")

// Extraction is the structured result of parsing one model reply. Exactly one
// of Snapshot or OutOfScope is meaningful.
type Extraction struct {
	OutOfScope bool
	Reason     string
	Snapshot   *conversation.RecipeSnapshot
}

const (
	fallbackRecipeTitle = "Untitled Recipe"
	fallbackImageURL    = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=800"
	fallbackTimeMinutes = 30
)

var numberRun = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Extract parses a raw model reply into a recipe snapshot, tolerating
// markdown fencing and stray prose around the JSON. A model-declared
// OUT_OF_SCOPE payload is propagated unchanged instead of coerced.
func Extract(raw string) (*Extraction, error) {
	candidate := fencedBlock(raw)

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, ErrNoJSON
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(candidate[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}

	if errVal, ok := payload["error"].(string); ok && errVal == "OUT_OF_SCOPE" {
		reason, _ := payload["reason"].(string)
		return &Extraction{OutOfScope: true, Reason: reason}, nil
	}

	return &Extraction{Snapshot: coerceSnapshot(payload)}, nil
}

// fencedBlock prefers the contents of the first ```json or ``` fenced code
// block; without a complete fence the raw text is used as-is.
func fencedBlock(raw string) string {
	trimmed := strings.TrimSpace(raw)

	open := strings.Index(trimmed, "```")
	if open == -1 {
		return trimmed
	}
	rest := trimmed[open+3:]
	if newline := strings.Index(rest, "\n"); newline != -1 {
		// Drop the language tag on the opening fence line
		tag := strings.TrimSpace(rest[:newline])
		if tag == "json" || tag == "" {
			rest = rest[newline+1:]
		}
	}
	if closing := strings.Index(rest, "```"); closing != -1 {
		return strings.TrimSpace(rest[:closing])
	}
	return trimmed
}

// coerceSnapshot normalizes a recipe-shaped object into a snapshot with
// concrete values everywhere: fallback title/image/time, empty slices over
// nil, stringified list elements, and nutrition collapsed to numbers.
func coerceSnapshot(payload map[string]interface{}) *conversation.RecipeSnapshot {
	snap := &conversation.RecipeSnapshot{
		Title:        stringField(payload, "title"),
		Image:        stringField(payload, "image"),
		TimeMinutes:  intField(payload, "time_minutes", "time"),
		Ingredients:  stringSliceField(payload, "ingredients"),
		Instructions: stringSliceField(payload, "instructions"),
	}

	// The fallback title applies only when the recipe is otherwise usable;
	// an object with no title, ingredients or instructions must stay empty so
	// the caller can report an incomplete generation.
	if snap.Title == "" && (len(snap.Ingredients) > 0 || len(snap.Instructions) > 0) {
		snap.Title = fallbackRecipeTitle
	}
	if snap.Image == "" {
		snap.Image = fallbackImageURL
	}
	if snap.TimeMinutes <= 0 {
		snap.TimeMinutes = fallbackTimeMinutes
	}

	if nut, ok := payload["nutrition"].(map[string]interface{}); ok {
		snap.Nutrition = conversation.Nutrition{
			Calories: numberField(nut, "calories"),
			Protein:  numberField(nut, "protein", "protein_g"),
			Carbs:    numberField(nut, "carbs", "carbs_g"),
			Fat:      numberField(nut, "fat", "fat_g"),
		}
	}

	return snap
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func intField(m map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		if n, ok := parseNumber(m[key]); ok {
			return int(n)
		}
	}
	return 0
}

func numberField(m map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		if n, ok := parseNumber(m[key]); ok {
			return n
		}
	}
	// Nutrition is normalized to concrete numbers at this boundary; absent
	// values become 0 so downstream consumers never see a missing field.
	return 0
}

// parseNumber accepts native numbers and strings carrying one; for strings it
// parses the first decimal-or-integer run ("about 450 kcal" -> 450). The
// placeholder values "—", "-", "n/a" and empty string mean "no value".
func parseNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.ToLower(strings.TrimSpace(n))
		switch s {
		case "", "—", "-", "n/a":
			return 0, false
		}
		run := numberRun.FindString(s)
		if run == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(run, 64)
		return f, err == nil
	}
	return 0, false
}

// stringSliceField stringifies each element. Ingredient objects in the shape
// {"name", "amount", "unit"} are flattened to "amount unit name".
func stringSliceField(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case map[string]interface{}:
			if s := flattenIngredient(v); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func flattenIngredient(obj map[string]interface{}) string {
	name := stringField(obj, "name")
	if name == "" {
		return ""
	}
	parts := make([]string, 0, 3)
	if amount, ok := parseNumber(obj["amount"]); ok && amount > 0 {
		parts = append(parts, strconv.FormatFloat(amount, 'f', -1, 64))
	}
	if unit := stringField(obj, "unit"); unit != "" {
		parts = append(parts, unit)
	}
	parts = append(parts, name)
	return strings.Join(parts, " ")
}
