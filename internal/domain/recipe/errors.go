package recipe

import "errors"

// Domain errors for saved recipe operations

var (
	ErrEmptyOwnerID   = errors.New("recipe owner id is required")
	ErrEmptyMessageID = errors.New("originating message id is required")
	ErrNoSnapshot     = errors.New("message snapshot has no usable recipe content")
	ErrRecipeNotFound = errors.New("saved recipe not found")
)
