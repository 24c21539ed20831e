package gorm

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ThreadModel{}, &SavedRecipeModel{}))
	return db
}

func testUserMessage(content string) conversation.Message {
	return conversation.Message{
		ID:        uuid.NewString(),
		Role:      conversation.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func testModelMessage(title string) conversation.Message {
	return conversation.Message{
		ID:        uuid.NewString(),
		Role:      conversation.RoleModel,
		CreatedAt: time.Now(),
		RecipeSnapshot: &conversation.RecipeSnapshot{
			Title:        title,
			TimeMinutes:  30,
			Ingredients:  []string{"a", "b"},
			Instructions: []string{"step 1"},
			Nutrition:    conversation.Nutrition{Calories: 400, Protein: 20},
		},
	}
}

func TestThreadRepositoryAppend(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	t.Run("FirstAppend_ShouldCreateThread", func(t *testing.T) {
		thread, err := repo.Append(ctx, "user-1", "thread-a", testUserMessage("adobo recipe"))

		require.NoError(t, err)
		assert.Equal(t, 1, thread.MessageCount())
		assert.Equal(t, "adobo recipe", thread.Title())
	})

	t.Run("SecondAppend_ShouldExtendLog", func(t *testing.T) {
		thread, err := repo.Append(ctx, "user-1", "thread-a", testModelMessage("Chicken Adobo"))

		require.NoError(t, err)
		assert.Equal(t, 2, thread.MessageCount())
		assert.True(t, thread.HasSuccessfulGeneration())
		assert.Equal(t, "Chicken Adobo", thread.Title())
	})

	t.Run("RoundTrip_ShouldPreserveSnapshot", func(t *testing.T) {
		thread, err := repo.FindByID(ctx, "user-1", "thread-a")
		require.NoError(t, err)

		snap := thread.Messages()[1].RecipeSnapshot
		require.NotNil(t, snap)
		assert.Equal(t, "Chicken Adobo", snap.Title)
		assert.Equal(t, []string{"a", "b"}, snap.Ingredients)
		assert.Equal(t, 400.0, snap.Nutrition.Calories)
	})

	t.Run("OtherOwner_ShouldNotSeeThread", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "user-2", "thread-a")
		assert.ErrorIs(t, err, conversation.ErrThreadNotFound)
	})
}

func TestThreadRepositoryConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	first := testUserMessage("adobo recipe")
	_, err := repo.Append(ctx, "user-1", "thread-a", first)
	require.NoError(t, err)

	// Racing appends to the same thread must both land; the locking
	// transaction serializes the read-modify-write of the document
	second := testUserMessage("make it spicier")
	third := testModelMessage("Spicy Adobo")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, msg := range []conversation.Message{second, third} {
		wg.Add(1)
		go func(m conversation.Message) {
			defer wg.Done()
			_, err := repo.Append(ctx, "user-1", "thread-a", m)
			errs <- err
		}(msg)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	thread, err := repo.FindByID(ctx, "user-1", "thread-a")
	require.NoError(t, err)
	require.Equal(t, 3, thread.MessageCount())
	assert.Equal(t, first.ID, thread.Messages()[0].ID)

	seen := make(map[string]bool)
	for _, m := range thread.Messages() {
		seen[m.ID] = true
	}
	assert.True(t, seen[second.ID])
	assert.True(t, seen[third.ID])
}

func TestThreadRepositoryLongMessageFitsTitleColumn(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	long := strings.Repeat("slow-braised pork belly with garlic ", 25)
	thread, err := repo.Append(ctx, "user-1", "thread-a", testUserMessage(long))
	require.NoError(t, err)

	// The title column is varchar(255); the derived title must fit it even
	// though request text can be far longer
	assert.LessOrEqual(t, utf8.RuneCountInString(thread.Title()), 255)

	reloaded, err := repo.FindByID(ctx, "user-1", "thread-a")
	require.NoError(t, err)
	assert.Equal(t, thread.Title(), reloaded.Title())
	assert.Equal(t, long, reloaded.Messages()[0].Content)
}

func TestThreadRepositoryReplace(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	_, err := repo.Append(ctx, "user-1", "thread-a", testUserMessage("old"))
	require.NoError(t, err)

	messages := []conversation.Message{
		testUserMessage("new question"),
		testModelMessage("Pancit Canton"),
	}
	thread, err := repo.Replace(ctx, "user-1", "thread-a", messages)

	require.NoError(t, err)
	assert.Equal(t, 2, thread.MessageCount())
	assert.Equal(t, "Pancit Canton", thread.Title())

	reloaded, err := repo.FindByID(ctx, "user-1", "thread-a")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.MessageCount())
}

func TestThreadRepositoryReplaceCreatesMissingThread(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	thread, err := repo.Replace(ctx, "user-1", "fresh", []conversation.Message{
		testUserMessage("synced from client"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, thread.MessageCount())

	_, err = repo.Replace(ctx, "user-1", "empty", nil)
	assert.ErrorIs(t, err, conversation.ErrThreadNotFound)
}

func TestThreadRepositoryFindByMessage(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	msg := testModelMessage("Sinigang")
	_, err := repo.Append(ctx, "user-1", "thread-a", testUserMessage("sinigang"))
	require.NoError(t, err)
	_, err = repo.Append(ctx, "user-1", "thread-a", msg)
	require.NoError(t, err)

	thread, err := repo.FindByMessage(ctx, "user-1", msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "thread-a", thread.ID())

	_, err = repo.FindByMessage(ctx, "user-1", uuid.NewString())
	assert.ErrorIs(t, err, conversation.ErrThreadNotFound)

	// Ownership is part of the lookup
	_, err = repo.FindByMessage(ctx, "user-2", msg.ID)
	assert.ErrorIs(t, err, conversation.ErrThreadNotFound)
}

func TestThreadRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	_, err := repo.Append(ctx, "user-1", "t1", testUserMessage("one"))
	require.NoError(t, err)
	_, err = repo.Append(ctx, "user-1", "t2", testUserMessage("two"))
	require.NoError(t, err)
	_, err = repo.Append(ctx, "user-1", "t2", testModelMessage("Lumpia"))
	require.NoError(t, err)
	_, err = repo.Append(ctx, "user-2", "t3", testUserMessage("other owner"))
	require.NoError(t, err)

	t.Run("AllThreads_ShouldBeScopedToOwner", func(t *testing.T) {
		threads, total, err := repo.List(ctx, "user-1", outbound.ThreadFilter{Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, threads, 2)
	})

	t.Run("SuccessOnly_ShouldFilter", func(t *testing.T) {
		threads, total, err := repo.List(ctx, "user-1", outbound.ThreadFilter{SuccessOnly: true, Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, threads, 1)
		assert.Equal(t, "t2", threads[0].ID())
	})

	t.Run("Pagination_ShouldRespectOffsetAndLimit", func(t *testing.T) {
		threads, total, err := repo.List(ctx, "user-1", outbound.ThreadFilter{Offset: 1, Limit: 1})

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, threads, 1)
	})
}

func TestThreadRepositorySetSavedFlag(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository(setupTestDB(t))

	msg := testModelMessage("Kare-Kare")
	_, err := repo.Append(ctx, "user-1", "thread-a", testUserMessage("kare-kare"))
	require.NoError(t, err)
	_, err = repo.Append(ctx, "user-1", "thread-a", msg)
	require.NoError(t, err)

	require.NoError(t, repo.SetSavedFlag(ctx, "user-1", "thread-a", msg.ID, true, "recipe-7"))

	thread, err := repo.FindByID(ctx, "user-1", "thread-a")
	require.NoError(t, err)
	saved, err := thread.FindMessage(msg.ID)
	require.NoError(t, err)
	assert.True(t, saved.Saved)
	assert.Equal(t, "recipe-7", saved.RecipeID)

	require.NoError(t, repo.SetSavedFlag(ctx, "user-1", "thread-a", msg.ID, false, ""))

	thread, err = repo.FindByID(ctx, "user-1", "thread-a")
	require.NoError(t, err)
	cleared, err := thread.FindMessage(msg.ID)
	require.NoError(t, err)
	assert.False(t, cleared.Saved)
	assert.Empty(t, cleared.RecipeID)

	assert.ErrorIs(t,
		repo.SetSavedFlag(ctx, "user-1", "missing", msg.ID, true, "r"),
		conversation.ErrThreadNotFound,
	)
}
