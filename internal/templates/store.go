package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
)

//go:embed data/*.json
var embedded embed.FS

// Embedded returns the templates compiled into the binary
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Family groups the templates of one payment flow
type Family string

const (
	FamilyPix          Family = "pix"
	FamilyBoleto       Family = "boleto"
	FamilyCreditCard   Family = "credit_card"
	FamilyCartReminder Family = "cart_reminder"
)

var families = []Family{FamilyPix, FamilyBoleto, FamilyCreditCard, FamilyCartReminder}

// Key selects a template flow
type Key struct {
	Method domain.PaymentMethod
	Event  domain.EventType
	Status domain.OrderStatus
}

// Template is an ordered sequence of message parts
type Template struct {
	Family Family
	Name   string
	Parts  []string
}

// Store is a read-only mapping from Key to Template
type Store struct {
	flows  map[Family]map[string][]string
	logger *zap.Logger
}

// NewStore loads one <family>.json file per family from fsys
func NewStore(fsys fs.FS, logger *zap.Logger) (*Store, error) {
	s := &Store{
		flows:  make(map[Family]map[string][]string, len(families)),
		logger: logger,
	}

	for _, family := range families {
		data, err := fs.ReadFile(fsys, string(family)+".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s templates: %w", family, err)
		}

		var flows map[string][]string
		if err := json.Unmarshal(data, &flows); err != nil {
			return nil, fmt.Errorf("failed to parse %s templates: %w", family, err)
		}

		for name, parts := range flows {
			for i, part := range parts {
				for _, unknown := range UnknownPlaceholders(family, part) {
					logger.Warn("Template placeholder outside the family field set renders empty",
						zap.String("family", string(family)),
						zap.String("template", name),
						zap.Int("part", i+1),
						zap.String("placeholder", unknown),
					)
				}
			}
		}
		s.flows[family] = flows
	}

	return s, nil
}

// Lookup resolves the template flow for a key. A key with no flow, or a
// flow missing from the loaded files, returns false.
func (s *Store) Lookup(key Key) (Template, bool) {
	family, name, ok := flowFor(key)
	if !ok {
		return Template{}, false
	}
	parts, ok := s.flows[family][name]
	if !ok || len(parts) == 0 {
		return Template{}, false
	}
	return Template{Family: family, Name: name, Parts: parts}, true
}

func flowFor(key Key) (Family, string, bool) {
	if key.Event == domain.EventCartReminder {
		return FamilyCartReminder, "reminder", true
	}

	switch key.Method {
	case domain.PaymentPix:
		switch key.Event {
		case domain.EventOrderCreated:
			if key.Status == domain.StatusWaitingPayment {
				return FamilyPix, "waiting_payment", true
			}
		case domain.EventOrderPaid:
			return FamilyPix, "paid", true
		case domain.EventOrderStatusUpdated:
			if name, ok := statusFlow(key.Status); ok {
				return FamilyPix, name, true
			}
		case domain.EventPaymentRefused:
			return FamilyPix, "payment_refused", true
		}
	case domain.PaymentBoleto:
		switch key.Event {
		case domain.EventOrderCreated:
			return FamilyBoleto, "created", true
		case domain.EventOrderPaid:
			return FamilyBoleto, "paid", true
		case domain.EventOrderStatusUpdated:
			if name, ok := statusFlow(key.Status); ok {
				return FamilyBoleto, name, true
			}
		}
	case domain.PaymentCreditCard:
		switch key.Event {
		case domain.EventOrderCreated:
			if key.Status == domain.StatusWaitingPayment {
				return FamilyCreditCard, "waiting_payment", true
			}
		case domain.EventOrderPaid:
			return FamilyCreditCard, "paid", true
		case domain.EventOrderStatusUpdated:
			if name, ok := statusFlow(key.Status); ok {
				return FamilyCreditCard, name, true
			}
		case domain.EventPaymentRefused:
			return FamilyCreditCard, "payment_refused", true
		}
	}

	return "", "", false
}

func statusFlow(status domain.OrderStatus) (string, bool) {
	switch status {
	case domain.StatusCancelled:
		return "cancelled", true
	case domain.StatusOnCarriage:
		return "in_transit", true
	case domain.StatusDelivered:
		return "delivered", true
	default:
		return "", false
	}
}
