package service

import (
	"errors"
	"fmt"
)

// ValidationError is a client error tied to one input rule. Each rule has
// exactly one sentinel so callers can tell failures apart with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Recipe payload rules, in the order they are checked.
var (
	ErrNameRequired         = newValidationError("name", "name is required")
	ErrNameTooLong          = newValidationError("name", "name must be at most 100 characters")
	ErrTextRequired         = newValidationError("text", "text is required")
	ErrTextTooLong          = newValidationError("text", "text must be at most 500 characters")
	ErrCookingTimeRange     = newValidationError("cooking_time", "cooking time must be between 1 and 32767")
	ErrImageRequired        = newValidationError("image", "image is required")
	ErrInvalidImage         = newValidationError("image", "image must be a base64 encoded data URI")
	ErrNoIngredients        = newValidationError("ingredients", "must provide at least one ingredient")
	ErrAmountTooSmall       = newValidationError("ingredients", "amount cannot be less than 1")
	ErrDuplicateIngredients = newValidationError("ingredients", "duplicate ingredients")
	ErrUnknownIngredient    = newValidationError("ingredients", "non-existing ingredient")
	ErrNoTags               = newValidationError("tags", "must provide at least one tag")
	ErrDuplicateTags        = newValidationError("tags", "duplicate tags")
	ErrUnknownTag           = newValidationError("tags", "non-existing tag")
	ErrUnknownTagFilter     = newValidationError("tags", "select a valid tag")
)

// Membership and account rules.
var (
	ErrRecipeAlreadyAdded = newValidationError("recipe", "the recipe is already added")
	ErrRecipeNotInList    = newValidationError("recipe", "the recipe is not in the list")
	ErrSelfSubscription   = newValidationError("author", "cannot subscribe to yourself")
	ErrAlreadySubscribed  = newValidationError("author", "already subscribed")
	ErrNotSubscribed      = newValidationError("author", "not subscribed")
	ErrEmailTaken         = newValidationError("email", "a user with that email already exists")
	ErrUsernameTaken      = newValidationError("username", "a user with that username already exists")
	ErrWrongPassword      = newValidationError("current_password", "current password is incorrect")
)

var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("you do not have permission to perform this action")
	ErrInvalidPage = errors.New("invalid page")
)

// NotFoundError names the missing resource and matches ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}
