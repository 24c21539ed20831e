package conversation

import "errors"

// Domain errors for conversation operations

var (
	// Entity validation errors
	ErrEmptyOwnerID   = errors.New("thread owner id is required")
	ErrEmptyThreadID  = errors.New("thread id is required")
	ErrEmptyMessageID = errors.New("message id is required")
	ErrInvalidRole    = errors.New("message role must be user or model")

	// Lookup errors
	ErrThreadNotFound  = errors.New("thread not found")
	ErrMessageNotFound = errors.New("message not found in thread")

	// Business rule violations
	ErrNoRecipeSnapshot = errors.New("message carries no usable recipe snapshot")
)
