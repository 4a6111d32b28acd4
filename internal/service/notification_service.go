package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/address"
	"github.com/fuscashop/ordernotify/internal/dispatch"
	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/repository"
)

// Dispatcher enqueues outbound messages; *dispatch.Queue implements it
type Dispatcher interface {
	Enqueue(address string, payload dispatch.Payload) <-chan error
}

// NotificationResult summarizes the primary delivery of one event
type NotificationResult struct {
	OrderID   string `json:"order_id"`
	Template  string `json:"template,omitempty"`
	Address   string `json:"address,omitempty"`
	Alternate string `json:"alternate,omitempty"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
}

// NotificationService turns order events into customer notifications
type NotificationService interface {
	Notify(ctx context.Context, event *domain.OrderEvent) (*NotificationResult, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.NotificationLog, error)
}

type notificationService struct {
	normalizer     *EventNormalizer
	resolver       *address.Resolver
	queue          Dispatcher
	logs           repository.NotificationLogRepository
	alternateDelay time.Duration
	logger         *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	normalizer *EventNormalizer,
	resolver *address.Resolver,
	queue Dispatcher,
	logs repository.NotificationLogRepository,
	alternateDelay time.Duration,
	logger *zap.Logger,
) *notificationService {
	return &notificationService{
		normalizer:     normalizer,
		resolver:       resolver,
		queue:          queue,
		logs:           logs,
		alternateDelay: alternateDelay,
		logger:         logger,
		stop:           make(chan struct{}),
	}
}

// Notify classifies the event, sends every part to the primary address and
// waits for them. The alternate address, when there is one, gets the same
// parts after the alternate delay on its own goroutine.
func (s *notificationService) Notify(ctx context.Context, event *domain.OrderEvent) (*NotificationResult, error) {
	result := &NotificationResult{OrderID: event.OrderID}

	messages := s.normalizer.Classify(event)
	if len(messages) == 0 {
		return result, nil
	}
	result.Template = messages[0].Template

	primary, ok := s.resolver.Resolve(event.Customer.RawPhone)
	if !ok {
		s.logger.Warn("Event has no usable phone number, dropping",
			zap.String("order_id", event.OrderID),
			zap.String("phone", event.Customer.RawPhone),
		)
		return result, nil
	}
	result.Address = primary

	sent, failed, err := s.deliver(ctx, event, messages, primary, false)
	result.Sent, result.Failed = sent, failed
	if err != nil {
		return result, err
	}

	if alternate, ok := s.resolver.Alternate(primary); ok {
		result.Alternate = alternate
		s.scheduleAlternate(event, messages, alternate)
	}

	return result, nil
}

func (s *notificationService) ListByOrder(ctx context.Context, orderID string) ([]*domain.NotificationLog, error) {
	return s.logs.ListByOrder(ctx, orderID)
}

// Close cancels pending alternate sends and waits for running ones
func (s *notificationService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// deliver enqueues the parts in order, so they leave the queue in that
// order, then waits for each one.
func (s *notificationService) deliver(
	ctx context.Context,
	event *domain.OrderEvent,
	messages []domain.RenderedMessage,
	addr string,
	alternate bool,
) (sent, failed int, err error) {
	pending := make([]<-chan error, len(messages))
	for i, msg := range messages {
		pending[i] = s.queue.Enqueue(addr, dispatch.TextPayload(msg.Text))
	}

	for i, done := range pending {
		var sendErr error
		select {
		case sendErr = <-done:
		case <-ctx.Done():
			return sent, failed, ctx.Err()
		}

		msg := messages[i]
		if sendErr != nil {
			failed++
			s.logger.Error("Failed to send notification part",
				zap.String("order_id", event.OrderID),
				zap.String("template", msg.Template),
				zap.Int("part", msg.Part),
				zap.String("address", addr),
				zap.Bool("alternate", alternate),
				zap.Error(sendErr),
			)
		} else {
			sent++
		}
		s.record(event, msg, addr, alternate, sendErr)
	}

	return sent, failed, nil
}

func (s *notificationService) scheduleAlternate(event *domain.OrderEvent, messages []domain.RenderedMessage, alternate string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.alternateDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.stop:
			s.logger.Info("Alternate send cancelled on shutdown",
				zap.String("order_id", event.OrderID),
				zap.String("address", alternate),
			)
			return
		}

		sent, failed, _ := s.deliver(context.Background(), event, messages, alternate, true)
		s.logger.Info("Alternate notification finished",
			zap.String("order_id", event.OrderID),
			zap.String("address", alternate),
			zap.Int("sent", sent),
			zap.Int("failed", failed),
		)
	}()
}

func (s *notificationService) record(event *domain.OrderEvent, msg domain.RenderedMessage, addr string, alternate bool, sendErr error) {
	if s.logs == nil {
		return
	}

	entry := &domain.NotificationLog{
		OrderID:   event.OrderID,
		EventType: event.EventType,
		Template:  msg.Template,
		Part:      msg.Part,
		Address:   addr,
		Alternate: alternate,
		Status:    domain.NotificationSent,
	}
	if sendErr != nil {
		reason := sendErr.Error()
		entry.Status = domain.NotificationFailed
		entry.Error = &reason
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record notification log", zap.Error(err))
	}
}
