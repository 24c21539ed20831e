package conversation

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ThreadTestSuite provides a test suite for the Thread aggregate
type ThreadTestSuite struct {
	suite.Suite
}

func userMessage(id, content string) Message {
	return Message{
		ID:        id,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func modelMessage(id, title string) Message {
	return Message{
		ID:        id,
		Role:      RoleModel,
		CreatedAt: time.Now(),
		RecipeSnapshot: &RecipeSnapshot{
			Title:        title,
			Ingredients:  []string{"something"},
			Instructions: []string{"do something"},
		},
	}
}

func (suite *ThreadTestSuite) TestThreadCreation() {
	suite.Run("ValidFirstMessage_ShouldCreateThread", func() {
		thread, err := NewThread("user-1", "thread-1", userMessage("m1", "adobo recipe"))

		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), thread)

		assert.Equal(suite.T(), "thread-1", thread.ID())
		assert.Equal(suite.T(), "user-1", thread.OwnerID())
		assert.Equal(suite.T(), 1, thread.MessageCount())
		assert.False(suite.T(), thread.HasSuccessfulGeneration())
		assert.NotZero(suite.T(), thread.CreatedAt())

		events := thread.Events()
		require.Len(suite.T(), events, 1)
		started, ok := events[0].(ThreadStartedEvent)
		assert.True(suite.T(), ok, "Should emit ThreadStartedEvent")
		assert.Equal(suite.T(), "thread-1", started.ThreadID)
	})

	suite.Run("EmptyOwnerID_ShouldReturnError", func() {
		thread, err := NewThread("", "thread-1", userMessage("m1", "hi"))

		assert.Nil(suite.T(), thread)
		assert.Equal(suite.T(), ErrEmptyOwnerID, err)
	})

	suite.Run("EmptyThreadID_ShouldReturnError", func() {
		thread, err := NewThread("user-1", "", userMessage("m1", "hi"))

		assert.Nil(suite.T(), thread)
		assert.Equal(suite.T(), ErrEmptyThreadID, err)
	})

	suite.Run("InvalidFirstMessage_ShouldReturnError", func() {
		thread, err := NewThread("user-1", "thread-1", Message{ID: "m1", Role: "system"})

		assert.Nil(suite.T(), thread)
		assert.Equal(suite.T(), ErrInvalidRole, err)
	})
}

func (suite *ThreadTestSuite) TestTitleDerivation() {
	suite.Run("UserMessageOnly_ShouldUseUserContent", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "  adobo   recipe  "))
		require.NoError(suite.T(), err)

		assert.Equal(suite.T(), "adobo recipe", thread.Title())
		assert.Equal(suite.T(), "adobo recipe", thread.Preview())
	})

	suite.Run("ModelRecipeTitle_ShouldWinOverUserContent", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "something quick"))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), thread.Append(modelMessage("m2", "Chicken Adobo")))

		assert.Equal(suite.T(), "Chicken Adobo", thread.Title())
	})

	suite.Run("NoUsableSource_ShouldFallBack", func() {
		thread, err := NewThread("user-1", "t", Message{
			ID: "m1", Role: RoleUser, CreatedAt: time.Now(),
		})
		require.NoError(suite.T(), err)

		assert.Equal(suite.T(), "New conversation", thread.Title())
	})

	suite.Run("LongSource_ShouldTruncatePreviewAndTitle", func() {
		long := strings.Repeat("x", 500)
		thread, err := NewThread("user-1", "t", userMessage("m1", long))
		require.NoError(suite.T(), err)

		assert.Len(suite.T(), thread.Preview(), 120)
		// Derived titles are capped to the storage column width
		assert.Len(suite.T(), thread.Title(), 255)
		assert.Equal(suite.T(), long[:255], thread.Title())
	})

	suite.Run("MultiByteSource_ShouldTruncateOnRuneBoundary", func() {
		long := strings.Repeat("crème brûlée ", 40)
		thread, err := NewThread("user-1", "t", userMessage("m1", long))
		require.NoError(suite.T(), err)

		assert.True(suite.T(), utf8.ValidString(thread.Preview()))
		assert.True(suite.T(), utf8.ValidString(thread.Title()))
		assert.Equal(suite.T(), 120, utf8.RuneCountInString(thread.Preview()))
		assert.Equal(suite.T(), 255, utf8.RuneCountInString(thread.Title()))
	})

	suite.Run("LongModelRecipeTitle_ShouldCapLastRecipeTitle", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), thread.Append(modelMessage("m2", strings.Repeat("Adobo ", 100))))

		assert.Equal(suite.T(), 255, utf8.RuneCountInString(thread.LastRecipeTitle()))
		assert.Equal(suite.T(), 255, utf8.RuneCountInString(thread.Title()))
	})
}

func (suite *ThreadTestSuite) TestSuccessFlag() {
	suite.Run("SuccessfulGeneration_ShouldSetFlagAndTitle", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), thread.Append(modelMessage("m2", "Chicken Adobo")))

		assert.True(suite.T(), thread.HasSuccessfulGeneration())
		assert.Equal(suite.T(), "Chicken Adobo", thread.LastRecipeTitle())

		events := thread.Events()
		generated, ok := events[len(events)-1].(RecipeGeneratedEvent)
		require.True(suite.T(), ok, "Should emit RecipeGeneratedEvent")
		assert.Equal(suite.T(), "m2", generated.MessageID)
	})

	suite.Run("FlagIsSticky_LaterFailedTurnsDoNotClearIt", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), thread.Append(modelMessage("m2", "Chicken Adobo")))
		require.NoError(suite.T(), thread.Append(userMessage("m3", "fix my javascript")))

		assert.True(suite.T(), thread.HasSuccessfulGeneration())
		assert.Equal(suite.T(), "Chicken Adobo", thread.LastRecipeTitle())
	})
}

func (suite *ThreadTestSuite) TestReplaceMessages() {
	suite.Run("ValidLog_ShouldOverwrite", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "old"))
		require.NoError(suite.T(), err)

		err = thread.ReplaceMessages([]Message{
			userMessage("n1", "new question"),
			modelMessage("n2", "New Recipe"),
		})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 2, thread.MessageCount())
		assert.Equal(suite.T(), "New Recipe", thread.Title())
	})

	suite.Run("OversizedLog_ShouldKeepMostRecent", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "hi"))
		require.NoError(suite.T(), err)

		oversized := make([]Message, MaxMessages+50)
		for i := range oversized {
			oversized[i] = userMessage(fmt.Sprintf("m%d", i), fmt.Sprintf("msg %d", i))
		}

		require.NoError(suite.T(), thread.ReplaceMessages(oversized))
		assert.Equal(suite.T(), MaxMessages, thread.MessageCount())
		// The oldest entries were dropped, not the newest
		assert.Equal(suite.T(), "m50", thread.Messages()[0].ID)
	})

	suite.Run("InvalidMessage_ShouldRejectWholeLog", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "hi"))
		require.NoError(suite.T(), err)

		err = thread.ReplaceMessages([]Message{
			userMessage("n1", "fine"),
			{Role: RoleUser}, // missing id
		})

		assert.Equal(suite.T(), ErrEmptyMessageID, err)
		assert.Equal(suite.T(), 1, thread.MessageCount())
	})
}

func (suite *ThreadTestSuite) TestSavedFlags() {
	suite.Run("MarkSaved_ShouldFlagAndLinkMessage", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), thread.Append(modelMessage("m2", "Chicken Adobo")))

		require.NoError(suite.T(), thread.MarkSaved("m2", "recipe-9"))

		msg, err := thread.FindMessage("m2")
		require.NoError(suite.T(), err)
		assert.True(suite.T(), msg.Saved)
		assert.Equal(suite.T(), "recipe-9", msg.RecipeID)
	})

	suite.Run("MarkSaved_UnknownMessage_ShouldReturnError", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)

		assert.Equal(suite.T(), ErrMessageNotFound, thread.MarkSaved("missing", "r"))
	})

	suite.Run("ClearSaved_ShouldResetFlags", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), thread.Append(modelMessage("m2", "Chicken Adobo")))
		require.NoError(suite.T(), thread.MarkSaved("m2", "recipe-9"))

		thread.ClearSaved("m2")

		msg, err := thread.FindMessage("m2")
		require.NoError(suite.T(), err)
		assert.False(suite.T(), msg.Saved)
		assert.Empty(suite.T(), msg.RecipeID)
	})

	suite.Run("ClearSaved_UnknownMessage_ShouldBeNoOp", func() {
		thread, err := NewThread("user-1", "t", userMessage("m1", "adobo"))
		require.NoError(suite.T(), err)

		thread.ClearSaved("missing")
		assert.Equal(suite.T(), 1, thread.MessageCount())
	})
}

func (suite *ThreadTestSuite) TestRehydration() {
	suite.Run("DerivedFieldsAreRecomputed", func() {
		messages := []Message{
			userMessage("m1", "something"),
			modelMessage("m2", "Pancit Canton"),
		}
		created := time.Now().Add(-time.Hour)

		thread := Rehydrate("user-1", "t", messages, created, time.Now(), false)

		// The persisted success flag was stale; the log is authoritative
		assert.True(suite.T(), thread.HasSuccessfulGeneration())
		assert.Equal(suite.T(), "Pancit Canton", thread.Title())
		assert.Equal(suite.T(), created, thread.CreatedAt())
	})

	suite.Run("PersistedSuccessFlagIsSticky", func() {
		// A thread whose recipe turns were later replaced away keeps the flag
		thread := Rehydrate("user-1", "t",
			[]Message{userMessage("m1", "hello")},
			time.Now(), time.Now(), true)

		assert.True(suite.T(), thread.HasSuccessfulGeneration())
	})
}

func TestThreadTestSuite(t *testing.T) {
	suite.Run(t, new(ThreadTestSuite))
}

func TestSnapshotHasContent(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *RecipeSnapshot
		want     bool
	}{
		{"Nil_ShouldBeEmpty", nil, false},
		{"Empty_ShouldBeEmpty", &RecipeSnapshot{}, false},
		{"TitleOnly_ShouldHaveContent", &RecipeSnapshot{Title: "T"}, true},
		{"IngredientsOnly_ShouldHaveContent", &RecipeSnapshot{Ingredients: []string{"x"}}, true},
		{"InstructionsOnly_ShouldHaveContent", &RecipeSnapshot{Instructions: []string{"x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.HasContent())
		})
	}
}

func TestMessageValidate(t *testing.T) {
	assert.Equal(t, ErrEmptyMessageID, Message{Role: RoleUser}.Validate())
	assert.Equal(t, ErrInvalidRole, Message{ID: "m", Role: "assistant"}.Validate())
	assert.NoError(t, Message{ID: "m", Role: RoleModel}.Validate())
}
