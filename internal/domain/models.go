package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer identifies who an order event is about
type Customer struct {
	Name      string
	FirstName string
	RawPhone  string
}

// LineItem is one product line of an order or abandoned cart
type LineItem struct {
	Title     string
	Quantity  int
	UnitPrice float64
	CartToken string
}

// Totals holds the monetary totals of an order
type Totals struct {
	WithDiscount    float64
	WithoutDiscount float64
}

// PaymentExtras carries the payment instructions sent to the customer
type PaymentExtras struct {
	PixCode       string
	PixExpiration string
	BoletoBarcode string
	BoletoURL     string
}

// Tracking holds shipment tracking data
type Tracking struct {
	Code string
}

// OrderEvent is the canonical fact set extracted from an order webhook.
// It is immutable once parsed.
type OrderEvent struct {
	EventType                EventType
	OrderID                  string
	Customer                 Customer
	PaymentMethod            PaymentMethod
	TransactionPaymentMethod PaymentMethod
	OrderStatus              OrderStatus
	LineItems                []LineItem
	Totals                   Totals
	PaymentExtras            PaymentExtras
	Tracking                 Tracking
	ReorderURL               string
}

// ResolvedPaymentMethod prefers the latest transaction's alias over the
// event's top-level alias. Returns PaymentUnknown when neither is set.
func (e *OrderEvent) ResolvedPaymentMethod() PaymentMethod {
	if e.TransactionPaymentMethod != "" {
		return e.TransactionPaymentMethod
	}
	if e.PaymentMethod != "" {
		return e.PaymentMethod
	}
	return PaymentUnknown
}

// HasCustomer reports whether the event identifies a customer
func (e *OrderEvent) HasCustomer() bool {
	return e.Customer.Name != "" || e.Customer.FirstName != "" || e.Customer.RawPhone != ""
}

// RenderedMessage is one rendered template part
type RenderedMessage struct {
	Template string
	Part     int
	Text     string
}

// Question is a curated question with the automated answers sent when a
// customer message matches one of its trigger phrases
type Question struct {
	ID             uuid.UUID  `json:"id"`
	Text           string     `json:"text"`
	TriggerPhrases []string   `json:"trigger_phrases"`
	Responses      []Response `json:"responses"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Triggers returns the trigger phrases, defaulting to the canonical text
func (q *Question) Triggers() []string {
	if len(q.TriggerPhrases) == 0 {
		return []string{q.Text}
	}
	return q.TriggerPhrases
}

// ActiveResponses returns the active responses in declared order
func (q *Question) ActiveResponses() []Response {
	active := make([]Response, 0, len(q.Responses))
	for _, r := range q.Responses {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}

// Match confidences per matching tier
const (
	ConfidenceExact       = 1.0
	ConfidenceContains    = 0.8
	ConfidenceContainedIn = 0.6
)

// MatchResult is the outcome of matching a customer message
type MatchResult struct {
	Matched    bool
	Confidence float64
	Question   *Question
	Phrase     string
}

// QuestionStats summarizes the question store
type QuestionStats struct {
	TotalQuestions    int                  `json:"total_questions"`
	ActiveQuestions   int                  `json:"active_questions"`
	InactiveQuestions int                  `json:"inactive_questions"`
	ActiveResponses   int                  `json:"active_responses"`
	InactiveResponses int                  `json:"inactive_responses"`
	ResponsesByKind   map[ResponseKind]int `json:"responses_by_kind"`
}

// NotificationStatus is the outcome of one notification part
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

// NotificationLog is an audit record of one dispatched notification part
type NotificationLog struct {
	ID        uuid.UUID          `json:"id"`
	OrderID   string             `json:"order_id"`
	EventType EventType          `json:"event_type"`
	Template  string             `json:"template"`
	Part      int                `json:"part"`
	Address   string             `json:"address"`
	Alternate bool               `json:"alternate"`
	Status    NotificationStatus `json:"status"`
	Error     *string            `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ComputeQuestionStats summarizes a full question listing
func ComputeQuestionStats(questions []*Question) QuestionStats {
	stats := QuestionStats{ResponsesByKind: make(map[ResponseKind]int)}
	for _, q := range questions {
		stats.TotalQuestions++
		if q.Active {
			stats.ActiveQuestions++
		} else {
			stats.InactiveQuestions++
		}
		for _, r := range q.Responses {
			if r.Active {
				stats.ActiveResponses++
			} else {
				stats.InactiveResponses++
			}
			stats.ResponsesByKind[r.Kind]++
		}
	}
	return stats
}
