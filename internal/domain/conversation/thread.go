// Package conversation contains the core domain logic for recipe
// conversations. A Thread is the aggregate root that owns an append-only log
// of Messages; every derived field is recomputed from the log on mutation.
package conversation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/richardjr822/food-findr/internal/domain/shared"
)

const (
	// MaxMessages bounds the log on bulk replace; only the most recent
	// messages are retained.
	MaxMessages = 200

	// previewMaxLen is the character budget for the derived preview.
	previewMaxLen = 120

	// titleMaxLen caps derived titles; the storage columns are varchar(255)
	// while source text can be far longer.
	titleMaxLen = 255

	// fallbackTitle is used when no message yields a title source.
	fallbackTitle = "New conversation"
)

// Thread represents a per-user conversation. The thread id is client-supplied
// and stable; (ownerID, id) is the natural key. Threads are mutated only by
// appends or full-replace saves and are never deleted by this subsystem.
type Thread struct {
	shared.AggregateRoot

	id      string
	ownerID string

	title   string
	preview string

	messages []Message

	hasSuccessfulGeneration bool
	lastRecipeTitle         string

	createdAt time.Time
	updatedAt time.Time
}

// NewThread creates a thread with a single initial message
func NewThread(ownerID, id string, first Message) (*Thread, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwnerID
	}
	if id == "" {
		return nil, ErrEmptyThreadID
	}
	if err := first.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &Thread{
		id:        id,
		ownerID:   ownerID,
		messages:  []Message{first},
		createdAt: now,
		updatedAt: now,
	}
	t.refreshDerived()

	t.AddEvent(ThreadStartedEvent{
		ThreadID:  id,
		OwnerID:   ownerID,
		StartedAt: now,
	})

	return t, nil
}

// Rehydrate reconstructs a thread from persisted state. Used by the
// persistence layer only; derived fields are recomputed rather than trusted.
func Rehydrate(ownerID, id string, messages []Message, createdAt, updatedAt time.Time, hadSuccess bool) *Thread {
	t := &Thread{
		id:                      id,
		ownerID:                 ownerID,
		messages:                messages,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
		hasSuccessfulGeneration: hadSuccess,
	}
	t.refreshDerived()
	return t
}

// ID returns the thread's client-supplied identifier
func (t *Thread) ID() string {
	return t.id
}

// OwnerID returns the owning user's identifier
func (t *Thread) OwnerID() string {
	return t.ownerID
}

// Title returns the derived thread title
func (t *Thread) Title() string {
	return t.title
}

// Preview returns the derived thread preview
func (t *Thread) Preview() string {
	return t.preview
}

// Messages returns the message log in append order
func (t *Thread) Messages() []Message {
	return t.messages
}

// MessageCount returns the number of messages in the log
func (t *Thread) MessageCount() int {
	return len(t.messages)
}

// HasSuccessfulGeneration reports whether any model turn ever produced a
// usable recipe. The flag is sticky: later failed turns do not clear it.
func (t *Thread) HasSuccessfulGeneration() bool {
	return t.hasSuccessfulGeneration
}

// LastRecipeTitle returns the title of the most recent successful generation
func (t *Thread) LastRecipeTitle() string {
	return t.lastRecipeTitle
}

// CreatedAt returns when the thread was created
func (t *Thread) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the thread was last mutated
func (t *Thread) UpdatedAt() time.Time {
	return t.updatedAt
}

// Append pushes a message onto the log and recomputes derived fields
func (t *Thread) Append(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	t.messages = append(t.messages, msg)
	t.updatedAt = time.Now()
	t.refreshDerived()

	if msg.IsSuccessfulGeneration() {
		t.AddEvent(RecipeGeneratedEvent{
			ThreadID:    t.id,
			OwnerID:     t.ownerID,
			MessageID:   msg.ID,
			RecipeTitle: msg.RecipeSnapshot.Title,
			GeneratedAt: t.updatedAt,
		})
	}

	return nil
}

// ReplaceMessages overwrites the whole log, keeping only the most recent
// MaxMessages entries. Used for bulk client-side sync, not single-turn appends.
func (t *Thread) ReplaceMessages(messages []Message) error {
	for _, m := range messages {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	if len(messages) > MaxMessages {
		messages = messages[len(messages)-MaxMessages:]
	}

	t.messages = messages
	t.updatedAt = time.Now()
	t.refreshDerived()
	return nil
}

// FindMessage locates a message by id
func (t *Thread) FindMessage(messageID string) (*Message, error) {
	for i := range t.messages {
		if t.messages[i].ID == messageID {
			return &t.messages[i], nil
		}
	}
	return nil, ErrMessageNotFound
}

// MarkSaved flips the saved flag on a message and links it to its SavedRecipe
func (t *Thread) MarkSaved(messageID, recipeID string) error {
	msg, err := t.FindMessage(messageID)
	if err != nil {
		return err
	}
	msg.Saved = true
	msg.RecipeID = recipeID
	t.updatedAt = time.Now()
	return nil
}

// ClearSaved clears the saved flag and recipe link on a message. Clearing a
// message that is absent or was never saved is a no-op; the desired end state
// is "not saved" either way.
func (t *Thread) ClearSaved(messageID string) {
	msg, err := t.FindMessage(messageID)
	if err != nil {
		return
	}
	msg.Saved = false
	msg.RecipeID = ""
	t.updatedAt = time.Now()
}

// refreshDerived recomputes title, preview, lastRecipeTitle and the success
// flag from the message log. Derived fields are never independently settable.
func (t *Thread) refreshDerived() {
	t.title, t.preview = t.deriveTitleAndPreview()

	// Sticky: once a thread has generated successfully it stays flagged
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].IsSuccessfulGeneration() {
			t.hasSuccessfulGeneration = true
			if t.messages[i].RecipeSnapshot.Title != "" {
				t.lastRecipeTitle = truncate(t.messages[i].RecipeSnapshot.Title, titleMaxLen)
			}
			break
		}
	}
}

// deriveTitleAndPreview scans messages in reverse: the most recent model
// message's recipe title wins, then that message's plain content, then the
// most recent user message's content, then a fixed placeholder.
func (t *Thread) deriveTitleAndPreview() (string, string) {
	source := ""

	for i := len(t.messages) - 1; i >= 0 && source == ""; i-- {
		if t.messages[i].Role != RoleModel {
			continue
		}
		if snap := t.messages[i].RecipeSnapshot; snap != nil && snap.Title != "" {
			source = snap.Title
		} else if t.messages[i].Content != "" {
			source = t.messages[i].Content
		}
		break
	}

	if source == "" {
		for i := len(t.messages) - 1; i >= 0; i-- {
			if t.messages[i].Role == RoleUser && t.messages[i].Content != "" {
				source = t.messages[i].Content
				break
			}
		}
	}

	if source == "" {
		return fallbackTitle, fallbackTitle
	}

	collapsed := collapseWhitespace(source)
	return truncate(collapsed, titleMaxLen), truncate(collapsed, previewMaxLen)
}

// collapseWhitespace folds runs of whitespace into single spaces
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s at max characters, cutting on a rune boundary so a
// multi-byte character is never split
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
