package yampi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/fuscashop/ordernotify/internal/domain"
)

// Webhook is the storefront's webhook envelope
type Webhook struct {
	Event    string   `json:"event"`
	Time     string   `json:"time,omitempty"`
	Resource Resource `json:"resource"`
}

// Resource is the order (or abandoned cart) the event is about
type Resource struct {
	ID                 interface{}     `json:"id"`
	Number             interface{}     `json:"number,omitempty"`
	Customer           CustomerRef     `json:"customer"`
	Status             StatusRef       `json:"status"`
	Items              ItemList        `json:"items"`
	Payments           []Payment       `json:"payments"`
	Transactions       TransactionList `json:"transactions"`
	BuyerValueTotal    float64         `json:"buyer_value_total"`
	ReorderURL         string          `json:"reorder_url"`
	TrackCode          string          `json:"track_code"`
	BilletWhatsappLink string          `json:"billet_whatsapp_link"`
}

type CustomerRef struct {
	Data *Customer `json:"data"`
}

type Customer struct {
	ID        interface{} `json:"id"`
	Name      string      `json:"name"`
	FirstName string      `json:"first_name"`
	Phone     struct {
		FullNumber string `json:"full_number"`
	} `json:"phone"`
}

type StatusRef struct {
	Data *Status `json:"data"`
}

type Status struct {
	Alias string `json:"alias"`
	Name  string `json:"name,omitempty"`
}

type ItemList struct {
	Data []Item `json:"data"`
}

type Item struct {
	Quantity int `json:"quantity"`
	SKU      struct {
		Data SKU `json:"data"`
	} `json:"sku"`
}

type SKU struct {
	Title     string  `json:"title"`
	Token     string  `json:"token"`
	PriceSale float64 `json:"price_sale"`
}

type Payment struct {
	Alias string `json:"alias"`
	Name  string `json:"name,omitempty"`
}

type TransactionList struct {
	Data []Transaction `json:"data"`
}

type Transaction struct {
	Payment struct {
		Data Payment `json:"data"`
	} `json:"payment"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	BilletBarcode string          `json:"billet_barcode"`
	BilletURL     string          `json:"billet_url"`
}

type metadataEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// Parse decodes a webhook body into an order event
func Parse(body []byte) (*domain.OrderEvent, error) {
	var w Webhook
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook: %w", err)
	}
	if strings.TrimSpace(w.Event) == "" {
		return nil, fmt.Errorf("webhook has no event")
	}
	event := w.ToEvent()
	return &event, nil
}

// ToEvent extracts the canonical fact set from the webhook. The latest
// transaction is the first element of resource.transactions.data.
func (w *Webhook) ToEvent() domain.OrderEvent {
	r := w.Resource
	event := domain.OrderEvent{
		EventType:  domain.EventType(strings.TrimSpace(w.Event)),
		OrderID:    cast.ToString(r.ID),
		ReorderURL: r.ReorderURL,
		Tracking:   domain.Tracking{Code: r.TrackCode},
		PaymentExtras: domain.PaymentExtras{
			BoletoURL: r.BilletWhatsappLink,
		},
	}

	if c := r.Customer.Data; c != nil {
		event.Customer = domain.Customer{
			Name:      strings.TrimSpace(c.Name),
			FirstName: strings.TrimSpace(c.FirstName),
			RawPhone:  c.Phone.FullNumber,
		}
	}
	if s := r.Status.Data; s != nil {
		event.OrderStatus = domain.ParseOrderStatus(s.Alias)
	}

	var withoutDiscount float64
	for _, item := range r.Items.Data {
		sku := item.SKU.Data
		event.LineItems = append(event.LineItems, domain.LineItem{
			Title:     sku.Title,
			Quantity:  item.Quantity,
			UnitPrice: sku.PriceSale,
			CartToken: sku.Token,
		})
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		withoutDiscount += sku.PriceSale * float64(qty)
	}
	event.Totals = domain.Totals{
		WithDiscount:    r.BuyerValueTotal,
		WithoutDiscount: withoutDiscount,
	}

	if len(r.Payments) > 0 {
		event.PaymentMethod = domain.ParsePaymentMethod(r.Payments[0].Alias)
	}

	if len(r.Transactions.Data) > 0 {
		tx := r.Transactions.Data[0]
		event.TransactionPaymentMethod = domain.ParsePaymentMethod(tx.Payment.Data.Alias)
		event.PaymentExtras.PixExpiration, event.PaymentExtras.PixCode = pixMetadata(tx.Metadata)
		event.PaymentExtras.BoletoBarcode = tx.BilletBarcode
		if tx.BilletURL != "" {
			event.PaymentExtras.BoletoURL = tx.BilletURL
		}
	}

	return event
}

// pixMetadata reads the PIX fields from transaction metadata, which comes
// either as a key/value list or as an object wrapping a data map.
func pixMetadata(raw json.RawMessage) (expiration, code string) {
	if len(raw) == 0 {
		return "", ""
	}

	var entries []metadataEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		for _, e := range entries {
			switch e.Key {
			case "pix_expiration_date":
				expiration = cast.ToString(e.Value)
			case "pix_qr_code":
				code = cast.ToString(e.Value)
			}
		}
		return expiration, code
	}

	var wrapped struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return cast.ToString(wrapped.Data["pix_expiration_date"]), cast.ToString(wrapped.Data["pix_qr_code"])
	}

	return "", ""
}
