package container

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/shared"
)

func TestEventDispatcher(t *testing.T) {
	t.Run("RegisteredHandler_ShouldReceiveEvent", func(t *testing.T) {
		dispatcher := NewEventDispatcher(zaptest.NewLogger(t))

		var received shared.DomainEvent
		dispatcher.Register("conversation.thread.started", func(event shared.DomainEvent) error {
			received = event
			return nil
		})

		event := conversation.ThreadStartedEvent{
			ThreadID:  "thread-1",
			OwnerID:   "user-1",
			StartedAt: time.Now(),
		}
		require.NoError(t, dispatcher.Dispatch(event))

		started, ok := received.(conversation.ThreadStartedEvent)
		require.True(t, ok)
		assert.Equal(t, "thread-1", started.ThreadID)
	})

	t.Run("UnregisteredEvent_ShouldBeNoOp", func(t *testing.T) {
		dispatcher := NewEventDispatcher(zaptest.NewLogger(t))

		assert.NoError(t, dispatcher.Dispatch(conversation.ThreadStartedEvent{
			ThreadID:  "thread-1",
			OwnerID:   "user-1",
			StartedAt: time.Now(),
		}))
	})

	t.Run("FailingHandler_ShouldNotBlockOthers", func(t *testing.T) {
		dispatcher := NewEventDispatcher(zaptest.NewLogger(t))

		dispatcher.Register("conversation.recipe.generated", func(event shared.DomainEvent) error {
			return errors.New("handler failed")
		})
		called := false
		dispatcher.Register("conversation.recipe.generated", func(event shared.DomainEvent) error {
			called = true
			return nil
		})

		require.NoError(t, dispatcher.Dispatch(conversation.RecipeGeneratedEvent{
			ThreadID:    "thread-1",
			OwnerID:     "user-1",
			MessageID:   "m2",
			GeneratedAt: time.Now(),
		}))
		assert.True(t, called)
	})
}

func TestRegisterEventHandlers(t *testing.T) {
	dispatcher := NewEventDispatcher(zaptest.NewLogger(t))
	RegisterEventHandlers(dispatcher, zaptest.NewLogger(t))

	assert.NoError(t, dispatcher.Dispatch(conversation.ThreadStartedEvent{
		ThreadID:  "thread-1",
		OwnerID:   "user-1",
		StartedAt: time.Now(),
	}))
	assert.NoError(t, dispatcher.Dispatch(conversation.RecipeGeneratedEvent{
		ThreadID:    "thread-1",
		OwnerID:     "user-1",
		MessageID:   "m2",
		RecipeTitle: "Chicken Adobo",
		GeneratedAt: time.Now(),
	}))
}
