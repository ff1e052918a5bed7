package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyMessage     = errors.New("message body is empty")
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageLimitReached  = errors.New("message request limit reached")
	ErrConversationDeclined = errors.New("conversation was declined")
)
