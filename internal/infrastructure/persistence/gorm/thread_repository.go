package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
)

// ThreadRepository implements the thread repository interface using GORM.
// All mutations run in a transaction that locks the thread row first, so
// concurrent appends to the same thread are serialized and the user turn
// lands before the model turn.
type ThreadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(db *gorm.DB) outbound.ThreadRepository {
	return &ThreadRepository{db: db}
}

// Append upserts: creates the thread with exactly one message when absent,
// otherwise pushes onto the existing log and recomputes derived columns.
func (r *ThreadRepository) Append(ctx context.Context, ownerID, threadID string, msg conversation.Message) (*conversation.Thread, error) {
	var thread *conversation.Thread

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ThreadModel
		result := r.lockedRow(tx).
			Where("owner_id = ? AND thread_id = ?", ownerID, threadID).
			First(&model)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			created, err := conversation.NewThread(ownerID, threadID, msg)
			if err != nil {
				return err
			}
			ThreadToModel(created, &model)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			thread = created
			return nil
		}
		if result.Error != nil {
			return result.Error
		}

		existing := ModelToThread(&model)
		if err := existing.Append(msg); err != nil {
			return err
		}
		ThreadToModel(existing, &model)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		thread = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// Replace overwrites the whole message log for bulk client-side sync
func (r *ThreadRepository) Replace(ctx context.Context, ownerID, threadID string, messages []conversation.Message) (*conversation.Thread, error) {
	var thread *conversation.Thread

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ThreadModel
		result := r.lockedRow(tx).
			Where("owner_id = ? AND thread_id = ?", ownerID, threadID).
			First(&model)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if len(messages) == 0 {
				return conversation.ErrThreadNotFound
			}
			created, err := conversation.NewThread(ownerID, threadID, messages[0])
			if err != nil {
				return err
			}
			if err := created.ReplaceMessages(messages); err != nil {
				return err
			}
			ThreadToModel(created, &model)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			thread = created
			return nil
		}
		if result.Error != nil {
			return result.Error
		}

		existing := ModelToThread(&model)
		if err := existing.ReplaceMessages(messages); err != nil {
			return err
		}
		ThreadToModel(existing, &model)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		thread = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// FindByID finds a thread by its natural key
func (r *ThreadRepository) FindByID(ctx context.Context, ownerID, threadID string) (*conversation.Thread, error) {
	var model ThreadModel

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND thread_id = ?", ownerID, threadID).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, conversation.ErrThreadNotFound
		}
		return nil, result.Error
	}

	return ModelToThread(&model), nil
}

// FindByMessage locates the thread containing a message by substring match on
// the serialized log. Message ids are UUIDs, so a quoted-id match cannot
// collide with other document content.
func (r *ThreadRepository) FindByMessage(ctx context.Context, ownerID, messageID string) (*conversation.Thread, error) {
	var model ThreadModel

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND messages LIKE ?", ownerID, `%"`+messageID+`"%`).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, conversation.ErrThreadNotFound
		}
		return nil, result.Error
	}

	return ModelToThread(&model), nil
}

// List returns a page of the owner's threads, most recently updated first
func (r *ThreadRepository) List(ctx context.Context, ownerID string, filter outbound.ThreadFilter) ([]*conversation.Thread, int, error) {
	query := r.db.WithContext(ctx).Model(&ThreadModel{}).
		Where("owner_id = ?", ownerID)
	if filter.SuccessOnly {
		query = query.Where("has_successful_generation = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []ThreadModel
	result := query.
		Order("updated_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	threads := make([]*conversation.Thread, len(models))
	for i := range models {
		threads[i] = ModelToThread(&models[i])
	}

	return threads, int(total), nil
}

// SetSavedFlag flips a message's saved flag and recipe link in place
func (r *ThreadRepository) SetSavedFlag(ctx context.Context, ownerID, threadID, messageID string, saved bool, recipeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ThreadModel
		result := r.lockedRow(tx).
			Where("owner_id = ? AND thread_id = ?", ownerID, threadID).
			First(&model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return conversation.ErrThreadNotFound
			}
			return result.Error
		}

		thread := ModelToThread(&model)
		if saved {
			if err := thread.MarkSaved(messageID, recipeID); err != nil {
				return err
			}
		} else {
			thread.ClearSaved(messageID)
		}

		ThreadToModel(thread, &model)
		return tx.Save(&model).Error
	})
}

// lockedRow adds a row lock where the dialect supports one. SQLite has a
// single writer and rejects FOR UPDATE, so the plain transaction suffices.
func (r *ThreadRepository) lockedRow(tx *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
