// Package generation implements the conversational recipe-generation
// pipeline: scope pre-filter, prompt assembly, the model call with a single
// bounded parse retry, extraction, and the conversation append.
package generation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appconversation "github.com/richardjr822/food-findr/internal/application/conversation"
	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/shared"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
	appErrors "github.com/richardjr822/food-findr/pkg/errors"
)

// Service orchestrates one generation turn end to end
type Service struct {
	threads      outbound.ThreadRepository
	cache        outbound.CacheRepository
	events       shared.EventDispatcher
	llm          outbound.LLMService
	classifier   *ScopeClassifier
	prompts      *PromptBuilder
	modelTimeout time.Duration
	logger       *zap.Logger
}

// NewService creates a generation service
func NewService(
	threads outbound.ThreadRepository,
	cache outbound.CacheRepository,
	events shared.EventDispatcher,
	llm outbound.LLMService,
	prompts *PromptBuilder,
	modelTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	if modelTimeout <= 0 {
		modelTimeout = 30 * time.Second
	}
	return &Service{
		threads:      threads,
		cache:        cache,
		events:       events,
		llm:          llm,
		classifier:   NewScopeClassifier(),
		prompts:      prompts,
		modelTimeout: modelTimeout,
		logger:       logger.Named("generation-service"),
	}
}

// GenerateTurn runs the pipeline for one user request. Scope rejections and
// incomplete generations are normal terminal outcomes that keep the user's
// turn in history; parse failures and transport faults append nothing, so the
// whole turn is safe to retry.
func (s *Service) GenerateTurn(ctx context.Context, cmd inbound.GenerateTurnCommand) (*inbound.TurnResult, error) {
	if cmd.OwnerID == "" {
		return nil, appErrors.NewUnauthorizedError("missing owner identity")
	}
	if strings.TrimSpace(cmd.UserText) == "" && strings.TrimSpace(cmd.MealType) == "" {
		return nil, appErrors.NewValidationError("request text is required")
	}

	threadID := cmd.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	userMsg := conversation.Message{
		ID:        uuid.NewString(),
		Role:      conversation.RoleUser,
		Content:   cmd.UserText,
		CreatedAt: time.Now(),
	}

	// Meal type is classified alongside the free text so that "dinner" plus a
	// bare ingredient list still counts as food-related.
	verdict := s.classifier.Classify(cmd.UserText + " " + cmd.MealType)
	if !verdict.InScope {
		s.logger.Info("request rejected by scope pre-filter",
			zap.String("thread_id", threadID),
			zap.String("reason", verdict.Reason),
		)
		return s.terminalTurn(ctx, cmd.OwnerID, threadID, userMsg, inbound.OutcomeScopeRejected, verdict.Reason)
	}

	input := PromptInput{UserText: cmd.UserText, MealType: cmd.MealType, Diet: cmd.Diet}
	history := toChatTurns(cmd.History)

	extraction, err := s.generateAndExtract(ctx, input, history)
	if err != nil {
		return nil, err
	}

	if extraction.OutOfScope {
		s.logger.Info("request rejected by model",
			zap.String("thread_id", threadID),
			zap.String("reason", extraction.Reason),
		)
		return s.terminalTurn(ctx, cmd.OwnerID, threadID, userMsg, inbound.OutcomeModelScopeRejected, extraction.Reason)
	}

	if !extraction.Snapshot.HasContent() {
		s.logger.Warn("model returned an empty recipe",
			zap.String("thread_id", threadID),
		)
		return s.terminalTurn(ctx, cmd.OwnerID, threadID, userMsg, inbound.OutcomeIncomplete, "generated recipe was incomplete")
	}

	modelMsg := conversation.Message{
		ID:             uuid.NewString(),
		Role:           conversation.RoleModel,
		CreatedAt:      time.Now(),
		RecipeSnapshot: extraction.Snapshot,
	}

	// Two sequential appends; the repository serializes per (owner, thread)
	// so the user turn lands before the model turn even under races.
	withUser, err := s.threads.Append(ctx, cmd.OwnerID, threadID, userMsg)
	if err != nil {
		return nil, appErrors.NewDatabaseError("append user message", err)
	}
	s.publishEvents(withUser)

	thread, err := s.threads.Append(ctx, cmd.OwnerID, threadID, modelMsg)
	if err != nil {
		return nil, appErrors.NewDatabaseError("append model message", err)
	}
	s.publishEvents(thread)
	s.invalidateThread(ctx, cmd.OwnerID, threadID)

	s.logger.Info("recipe generated",
		zap.String("thread_id", threadID),
		zap.String("title", extraction.Snapshot.Title),
	)

	userDTO := appconversation.ToMessageDTO(userMsg)
	modelDTO := appconversation.ToMessageDTO(modelMsg)
	return &inbound.TurnResult{
		Outcome:      inbound.OutcomeGenerated,
		UserMessage:  userDTO,
		ModelMessage: &modelDTO,
		Thread:       appconversation.ToThreadDTO(thread, false),
	}, nil
}

// generateAndExtract calls the model and parses its reply, spending at most
// one extra model call when the first reply carries no parseable JSON.
func (s *Service) generateAndExtract(ctx context.Context, input PromptInput, history []outbound.ChatTurn) (*Extraction, error) {
	raw, err := s.callModel(ctx, s.prompts.Build(input), history)
	if err != nil {
		return nil, err
	}

	extraction, parseErr := Extract(raw)
	if parseErr == nil {
		return extraction, nil
	}

	s.logger.Warn("model reply was not parseable, retrying with strict prompt",
		zap.Error(parseErr),
	)

	raw, err = s.callModel(ctx, s.prompts.BuildRetry(input), history)
	if err != nil {
		return nil, err
	}

	extraction, parseErr = Extract(raw)
	if parseErr != nil {
		return nil, appErrors.NewParseError(parseErr)
	}
	return extraction, nil
}

// callModel bounds the only slow dependency with a deadline. Exceeding it is
// surfaced as a retryable external-service failure, not a fatal one.
func (s *Service) callModel(ctx context.Context, prompt string, history []outbound.ChatTurn) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	started := time.Now()
	raw, err := s.llm.Generate(callCtx, prompt, history)
	if err != nil {
		s.logger.Error("model call failed",
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return "", appErrors.NewExternalServiceError("language model", err)
	}
	return raw, nil
}

// terminalTurn persists the user's message without a model turn and reports
// the outcome. Context is preserved so the user can rephrase in-thread.
func (s *Service) terminalTurn(
	ctx context.Context,
	ownerID, threadID string,
	userMsg conversation.Message,
	outcome inbound.TurnOutcome,
	reason string,
) (*inbound.TurnResult, error) {
	thread, err := s.threads.Append(ctx, ownerID, threadID, userMsg)
	if err != nil {
		return nil, appErrors.NewDatabaseError("append user message", err)
	}
	s.publishEvents(thread)
	s.invalidateThread(ctx, ownerID, threadID)

	return &inbound.TurnResult{
		Outcome:     outcome,
		Reason:      reason,
		UserMessage: appconversation.ToMessageDTO(userMsg),
		Thread:      appconversation.ToThreadDTO(thread, false),
	}, nil
}

// publishEvents drains the aggregate's buffered events after a committed
// write. Handler failures are logged by the dispatcher and never fail the turn.
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

// invalidateThread drops the cached thread document after a mutation. Cache
// failures are ignored; the repository stays the source of truth.
func (s *Service) invalidateThread(ctx context.Context, ownerID, threadID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, appconversation.ThreadCacheKey(ownerID, threadID)); err != nil {
		s.logger.Debug("thread cache invalidation failed", zap.Error(err))
	}
}

func toChatTurns(history []inbound.HistoryEntry) []outbound.ChatTurn {
	if len(history) == 0 {
		return nil
	}
	turns := make([]outbound.ChatTurn, len(history))
	for i, h := range history {
		turns[i] = outbound.ChatTurn{Role: h.Role, Content: h.Content}
	}
	return turns
}
