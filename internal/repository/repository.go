package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fuscashop/ordernotify/internal/domain"
)

// QuestionRepository is the question store backing the Q&A flow
type QuestionRepository interface {
	// GetActive returns active questions in stable creation order
	GetActive(ctx context.Context) ([]*domain.Question, error)
	List(ctx context.Context) ([]*domain.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	Create(ctx context.Context, question *domain.Question) error
	Update(ctx context.Context, question *domain.Question) error
	// Deactivate soft-deletes a question and returns the updated record
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	Stats(ctx context.Context) (*domain.QuestionStats, error)
}

// NotificationLogRepository records dispatched notification parts
type NotificationLogRepository interface {
	Create(ctx context.Context, log *domain.NotificationLog) error
	ListByOrder(ctx context.Context, orderID string) ([]*domain.NotificationLog, error)
}

// Repositories groups the repositories handed to services and handlers
type Repositories struct {
	Questions        QuestionRepository
	NotificationLogs NotificationLogRepository
}
