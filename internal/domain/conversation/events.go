package conversation

import "time"

// Domain Events - Events that occur within the conversation domain

// ThreadStartedEvent is raised when a thread is created on first append
type ThreadStartedEvent struct {
	ThreadID  string
	OwnerID   string
	StartedAt time.Time
}

func (e ThreadStartedEvent) EventName() string {
	return "conversation.thread.started"
}

func (e ThreadStartedEvent) OccurredAt() time.Time {
	return e.StartedAt
}

// RecipeGeneratedEvent is raised when a model turn produces a usable recipe
type RecipeGeneratedEvent struct {
	ThreadID    string
	OwnerID     string
	MessageID   string
	RecipeTitle string
	GeneratedAt time.Time
}

func (e RecipeGeneratedEvent) EventName() string {
	return "conversation.recipe.generated"
}

func (e RecipeGeneratedEvent) OccurredAt() time.Time {
	return e.GeneratedAt
}
