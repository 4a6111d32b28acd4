package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/templates"
)

func newTestNormalizer(t *testing.T) *EventNormalizer {
	t.Helper()
	store, err := templates.NewStore(templates.Embedded(), zap.NewNop())
	require.NoError(t, err)
	return NewEventNormalizer(store, NormalizerConfig{
		Locale:      "pt-BR",
		CartBaseURL: "https://loja.test/r/",
		TrackingURL: "https://loja.test/rastreio",
	}, zap.NewNop())
}

func pixEvent(eventType domain.EventType, status domain.OrderStatus) *domain.OrderEvent {
	return &domain.OrderEvent{
		EventType:     eventType,
		OrderID:       "1001",
		Customer:      domain.Customer{Name: "Ana Paula Souza", RawPhone: "11987654321"},
		PaymentMethod: domain.PaymentPix,
		OrderStatus:   status,
		LineItems:     []domain.LineItem{{Title: "Camiseta Fusca", Quantity: 2, UnitPrice: 59.9, CartToken: "tk1"}},
		Totals:        domain.Totals{WithDiscount: 120.5, WithoutDiscount: 119.8},
		PaymentExtras: domain.PaymentExtras{PixCode: "00020126PIXCODE", PixExpiration: "20/05 23:59"},
	}
}

func TestClassifyPixPaidRendersOneMessage(t *testing.T) {
	n := newTestNormalizer(t)

	messages := n.Classify(pixEvent(domain.EventOrderPaid, domain.StatusOther))
	require.Len(t, messages, 1)
	assert.Equal(t, "paid", messages[0].Template)
	assert.Equal(t, 1, messages[0].Part)
	assert.Contains(t, messages[0].Text, "Ana")
	assert.Contains(t, messages[0].Text, "R$ 120,50")
}

func TestClassifyPixWaitingPaymentRendersThreeOrderedParts(t *testing.T) {
	n := newTestNormalizer(t)

	messages := n.Classify(pixEvent(domain.EventOrderCreated, domain.StatusWaitingPayment))
	require.Len(t, messages, 3)

	assert.Equal(t, []int{1, 2, 3}, []int{messages[0].Part, messages[1].Part, messages[2].Part})
	assert.Contains(t, messages[0].Text, "Camiseta Fusca")
	assert.Contains(t, messages[0].Text, "⚠️ Expira em: 20/05 23:59")
	assert.Equal(t, "00020126PIXCODE", messages[1].Text)
	assert.Contains(t, messages[2].Text, "PIX copia e cola")
}

func TestClassifyTransactionAliasWins(t *testing.T) {
	n := newTestNormalizer(t)

	event := pixEvent(domain.EventOrderCreated, domain.StatusWaitingPayment)
	event.PaymentMethod = domain.PaymentPix
	event.TransactionPaymentMethod = domain.PaymentBoleto
	event.PaymentExtras.BoletoBarcode = "23790.00009"

	messages := n.Classify(event)
	require.Len(t, messages, 2)
	assert.Equal(t, "created", messages[0].Template)
	assert.Equal(t, "23790.00009", messages[1].Text)
}

func TestClassifyUnknownPaymentMethodIsEmpty(t *testing.T) {
	n := newTestNormalizer(t)

	events := []domain.EventType{
		domain.EventOrderCreated,
		domain.EventOrderPaid,
		domain.EventOrderStatusUpdated,
		domain.EventPaymentRefused,
		"order.something.else",
	}
	for _, et := range events {
		event := pixEvent(et, domain.StatusWaitingPayment)
		event.PaymentMethod = domain.PaymentUnknown
		assert.Empty(t, n.Classify(event), string(et))
	}
}

func TestClassifyDropsEventsWithValidationGaps(t *testing.T) {
	n := newTestNormalizer(t)

	noCustomer := pixEvent(domain.EventOrderPaid, domain.StatusOther)
	noCustomer.Customer = domain.Customer{}
	assert.Empty(t, n.Classify(noCustomer))

	noStatus := pixEvent(domain.EventOrderPaid, "")
	assert.Empty(t, n.Classify(noStatus))
}

func TestClassifyStatusUpdates(t *testing.T) {
	n := newTestNormalizer(t)

	event := pixEvent(domain.EventOrderStatusUpdated, domain.StatusOnCarriage)
	event.Tracking.Code = "BR123456"
	messages := n.Classify(event)
	require.Len(t, messages, 1)
	assert.Equal(t, "in_transit", messages[0].Template)
	assert.Contains(t, messages[0].Text, "BR123456")
	assert.Contains(t, messages[0].Text, "https://loja.test/rastreio")

	event.OrderStatus = domain.StatusWaitingPayment
	assert.Empty(t, n.Classify(event))
}

func TestClassifyCartReminder(t *testing.T) {
	n := newTestNormalizer(t)

	event := &domain.OrderEvent{
		EventType: domain.EventCartReminder,
		LineItems: []domain.LineItem{
			{Title: "Caneca", Quantity: 1, CartToken: "a1"},
			{Quantity: 3, CartToken: "b2"},
			{Title: "Adesivo"},
		},
		Totals: domain.Totals{WithDiscount: 89.9, WithoutDiscount: 99.9},
	}

	messages := n.Classify(event)
	require.Len(t, messages, 1)
	text := messages[0].Text
	assert.Contains(t, text, "Oi, Cliente!")
	assert.Contains(t, text, "4 item(ns)")
	assert.Contains(t, text, "• *Produto 2* (quantidade: 3)")
	assert.Contains(t, text, "• *Adesivo* (quantidade: 1)")
	assert.Contains(t, text, "~R$ 99,90~")
	assert.Contains(t, text, "https://loja.test/r/a1:1,b2:3")

	event.LineItems = nil
	assert.Empty(t, n.Classify(event))
}

func TestFieldsDefaults(t *testing.T) {
	n := newTestNormalizer(t)

	fields := n.Fields(&domain.OrderEvent{Customer: domain.Customer{FirstName: "Bia", Name: "Beatriz Lima"}})
	assert.Equal(t, "Bia", fields[templates.FieldCustomerName])
	assert.Equal(t, "0,00", fields[templates.FieldOrderValue])
	assert.Equal(t, "", fields[templates.FieldPixExpirationDate])
	assert.Equal(t, "0", fields[templates.FieldItemCount])

	fields = n.Fields(&domain.OrderEvent{Customer: domain.Customer{Name: "  Carlos  Silva"}})
	assert.Equal(t, "Carlos", fields[templates.FieldCustomerName])
}

func TestMoneyUsesLocaleSeparator(t *testing.T) {
	n := newTestNormalizer(t)
	assert.Equal(t, "59,90", n.Money(59.9))

	en := NewEventNormalizer(nil, NormalizerConfig{Locale: "en-US"}, zap.NewNop())
	assert.Equal(t, "59.90", en.Money(59.9))
}

func TestMoneyDoesNotGroupThousands(t *testing.T) {
	n := newTestNormalizer(t)
	assert.Equal(t, "1234,50", n.Money(1234.5))
	assert.Equal(t, "1000000,00", n.Money(1e6))
	assert.Equal(t, "0,00", n.Money(0))

	en := NewEventNormalizer(nil, NormalizerConfig{Locale: "en-US"}, zap.NewNop())
	assert.Equal(t, "1234.50", en.Money(1234.5))
}
