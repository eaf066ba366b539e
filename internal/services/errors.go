package services

import "errors"

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrInvalidLookupField   = errors.New("unsupported lookup field")
	ErrFailedToHashPassword = errors.New("failed to hash password")

	ErrNotLoggedIn      = errors.New("no user is logged in")
	ErrPermissionDenied = errors.New("permission denied")

	ErrTaskValidation       = errors.New("title and department are required")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyAssigned  = errors.New("task already assigned")
	ErrTaskNotAssigned      = errors.New("task has not been assigned")
	ErrTaskAlreadyCompleted = errors.New("task already completed")

	ErrMessageNotFound      = errors.New("message not found")
	ErrMessageInvalid       = errors.New("sender, recipient and content are required")
	ErrNotificationNotFound = errors.New("notification not found")
)
