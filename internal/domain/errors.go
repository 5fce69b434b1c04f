package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate дубликат записи
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")

	// ErrWebhookValidationFailed не удалось проверить подпись вебхука
	ErrWebhookValidationFailed = errors.New("webhook validation failed")

	// ErrUnknownEvent событие неизвестного типа
	ErrUnknownEvent = errors.New("unknown webhook event")
)

// NotFoundError представляет ошибку "не найдено" с указанием сущности
type NotFoundError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// WebhookError представляет ошибку обработки вебхук-события
type WebhookError struct {
	EventType   string
	Message     string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *WebhookError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("webhook error [%s]: %s: %v", e.EventType, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("webhook error [%s]: %s", e.EventType, e.Message)
}

// Unwrap возвращает оригинальную ошибку
func (e *WebhookError) Unwrap() error {
	return e.OriginalErr
}

// NewWebhookError создает новую ошибку обработки вебхука
func NewWebhookError(eventType, message string, err error) *WebhookError {
	return &WebhookError{
		EventType:   eventType,
		Message:     message,
		OriginalErr: err,
	}
}
