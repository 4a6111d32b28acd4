package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/media"
	"github.com/fuscashop/ordernotify/internal/service"
)

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) Notify(ctx context.Context, event *domain.OrderEvent) (*service.NotificationResult, error) {
	args := m.Called(ctx, event)
	result, _ := args.Get(0).(*service.NotificationResult)
	return result, args.Error(1)
}

func (m *mockNotificationService) ListByOrder(ctx context.Context, orderID string) ([]*domain.NotificationLog, error) {
	args := m.Called(ctx, orderID)
	logs, _ := args.Get(0).([]*domain.NotificationLog)
	return logs, args.Error(1)
}

type mockQAService struct {
	mock.Mock
}

func (m *mockQAService) HandleInbound(ctx context.Context, msg channel.InboundMessage) (*service.InboundResult, error) {
	args := m.Called(ctx, msg)
	result, _ := args.Get(0).(*service.InboundResult)
	return result, args.Error(1)
}

type mockQuestionService struct {
	mock.Mock
}

func (m *mockQuestionService) Create(ctx context.Context, input service.QuestionInput) (*domain.Question, error) {
	args := m.Called(ctx, input)
	q, _ := args.Get(0).(*domain.Question)
	return q, args.Error(1)
}

func (m *mockQuestionService) Update(ctx context.Context, id uuid.UUID, patch service.QuestionPatch) (*domain.Question, error) {
	args := m.Called(ctx, id, patch)
	q, _ := args.Get(0).(*domain.Question)
	return q, args.Error(1)
}

func (m *mockQuestionService) Remove(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*domain.Question)
	return q, args.Error(1)
}

func (m *mockQuestionService) Get(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*domain.Question)
	return q, args.Error(1)
}

func (m *mockQuestionService) List(ctx context.Context, includeInactive bool) ([]*domain.Question, error) {
	args := m.Called(ctx, includeInactive)
	list, _ := args.Get(0).([]*domain.Question)
	return list, args.Error(1)
}

func (m *mockQuestionService) Stats(ctx context.Context) (*domain.QuestionStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*domain.QuestionStats)
	return stats, args.Error(1)
}

func (m *mockQuestionService) Test(ctx context.Context, text string) (*service.TestResult, error) {
	args := m.Called(ctx, text)
	result, _ := args.Get(0).(*service.TestResult)
	return result, args.Error(1)
}

func (m *mockQuestionService) ListMedia(kind domain.ResponseKind) ([]media.File, error) {
	args := m.Called(kind)
	files, _ := args.Get(0).([]media.File)
	return files, args.Error(1)
}

func (m *mockQuestionService) ListAllMedia() (map[domain.ResponseKind][]media.File, error) {
	args := m.Called()
	files, _ := args.Get(0).(map[domain.ResponseKind][]media.File)
	return files, args.Error(1)
}
