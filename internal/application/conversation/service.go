// Package conversation implements the application service for conversation
// threads: paged listing, retrieval, and the bulk-sync replace.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/shared"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
	appErrors "github.com/richardjr822/food-findr/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	threadCacheTTL = 5 * time.Minute
)

// Service implements inbound.ConversationService
type Service struct {
	threads outbound.ThreadRepository
	cache   outbound.CacheRepository
	events  shared.EventDispatcher
	logger  *zap.Logger
}

// NewService creates a conversation service
func NewService(threads outbound.ThreadRepository, cache outbound.CacheRepository, events shared.EventDispatcher, logger *zap.Logger) *Service {
	return &Service{
		threads: threads,
		cache:   cache,
		events:  events,
		logger:  logger.Named("conversation-service"),
	}
}

// ListThreads returns a page of the owner's threads, optionally restricted to
// threads that ever produced a successful generation. Results are
// defensively de-duplicated by thread id.
func (s *Service) ListThreads(ctx context.Context, ownerID string, query inbound.ThreadListQuery) (*inbound.ThreadList, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorizedError("missing owner identity")
	}

	page, pageSize := normalizePage(query.Page, query.PageSize)

	threads, total, err := s.threads.List(ctx, ownerID, outbound.ThreadFilter{
		SuccessOnly: query.SuccessOnly,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("list threads", err)
	}

	seen := make(map[string]bool, len(threads))
	dtos := make([]inbound.ThreadDTO, 0, len(threads))
	for _, t := range threads {
		if seen[t.ID()] {
			continue
		}
		seen[t.ID()] = true
		dtos = append(dtos, *ToThreadDTO(t, false))
	}

	return &inbound.ThreadList{
		Threads:    dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// GetThread returns one thread with its full message log
func (s *Service) GetThread(ctx context.Context, ownerID, threadID string) (*inbound.ThreadDTO, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorizedError("missing owner identity")
	}
	if threadID == "" {
		return nil, appErrors.NewValidationError("thread id is required")
	}

	if dto := s.cachedThread(ctx, ownerID, threadID); dto != nil {
		return dto, nil
	}

	thread, err := s.threads.FindByID(ctx, ownerID, threadID)
	if err != nil {
		if errors.Is(err, conversation.ErrThreadNotFound) {
			return nil, appErrors.NewThreadNotFoundError(threadID)
		}
		return nil, appErrors.NewDatabaseError("find thread", err)
	}

	dto := ToThreadDTO(thread, true)
	s.storeThread(ctx, ownerID, threadID, dto)
	return dto, nil
}

// ReplaceThread overwrites a thread's message log from a client-side sync.
// The log is truncated to the most recent entries before derived fields are
// recomputed and the document persisted.
func (s *Service) ReplaceThread(ctx context.Context, ownerID, threadID string, messages []inbound.MessageDTO) (*inbound.ThreadDTO, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorizedError("missing owner identity")
	}
	if threadID == "" {
		return nil, appErrors.NewValidationError("thread id is required")
	}
	if len(messages) == 0 {
		return nil, appErrors.NewValidationError("at least one message is required")
	}

	domainMessages := make([]conversation.Message, len(messages))
	for i, dto := range messages {
		domainMessages[i] = FromMessageDTO(dto)
		if err := domainMessages[i].Validate(); err != nil {
			return nil, appErrors.NewValidationError(err.Error())
		}
	}

	thread, err := s.threads.Replace(ctx, ownerID, threadID, domainMessages)
	if err != nil {
		return nil, appErrors.NewDatabaseError("replace thread messages", err)
	}

	s.publishEvents(thread)
	s.invalidateThread(ctx, ownerID, threadID)

	s.logger.Info("thread replaced",
		zap.String("thread_id", threadID),
		zap.Int("message_count", thread.MessageCount()),
	)

	return ToThreadDTO(thread, true), nil
}

// Cache helpers. Failures are logged and ignored; the cache is an
// optimization, never a source of truth.

// ThreadCacheKey is the cache key for one owner's thread document. Exported
// so sibling services that mutate threads can invalidate it.
func ThreadCacheKey(ownerID, threadID string) string {
	return fmt.Sprintf("thread:%s:%s", ownerID, threadID)
}

func (s *Service) cachedThread(ctx context.Context, ownerID, threadID string) *inbound.ThreadDTO {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, ThreadCacheKey(ownerID, threadID))
	if err != nil || data == nil {
		return nil
	}
	var dto inbound.ThreadDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil
	}
	return &dto
}

func (s *Service) storeThread(ctx context.Context, ownerID, threadID string, dto *inbound.ThreadDTO) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, ThreadCacheKey(ownerID, threadID), data, threadCacheTTL); err != nil {
		s.logger.Debug("thread cache write failed", zap.Error(err))
	}
}

// publishEvents drains the aggregate's buffered events after a committed write
func (s *Service) publishEvents(thread *conversation.Thread) {
	if s.events == nil || thread == nil {
		return
	}
	for _, event := range thread.Events() {
		if err := s.events.Dispatch(event); err != nil {
			s.logger.Debug("event dispatch failed",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) invalidateThread(ctx context.Context, ownerID, threadID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ThreadCacheKey(ownerID, threadID)); err != nil {
		s.logger.Debug("thread cache invalidation failed", zap.Error(err))
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
