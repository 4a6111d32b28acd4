package domain

import "strings"

// EventType is the lifecycle event carried by an order webhook
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderPaid          EventType = "order.paid"
	EventOrderStatusUpdated EventType = "order.status.updated"
	EventPaymentRefused     EventType = "transaction.payment.refused"
	EventCartReminder       EventType = "cart.reminder"
)

// IsValid checks if the event type is one we know how to handle
func (e EventType) IsValid() bool {
	switch e {
	case EventOrderCreated,
		EventOrderPaid,
		EventOrderStatusUpdated,
		EventPaymentRefused,
		EventCartReminder:
		return true
	default:
		return false
	}
}

// PaymentMethod is the normalized payment alias of an order
type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "pix"
	PaymentBoleto     PaymentMethod = "boleto"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentUnknown    PaymentMethod = "unknown"
)

// ParsePaymentMethod maps a raw payment alias to a PaymentMethod.
// "billet" is the storefront's English alias for boleto. An empty alias
// stays empty so callers can tell "absent" from "unrecognized".
func ParsePaymentMethod(alias string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "":
		return ""
	case "pix":
		return PaymentPix
	case "boleto", "billet":
		return PaymentBoleto
	case "credit_card":
		return PaymentCreditCard
	default:
		return PaymentUnknown
	}
}

// OrderStatus is the normalized order status alias
type OrderStatus string

const (
	StatusWaitingPayment OrderStatus = "waiting_payment"
	StatusCancelled      OrderStatus = "cancelled"
	StatusOnCarriage     OrderStatus = "on_carriage"
	StatusDelivered      OrderStatus = "delivered"
	StatusOther          OrderStatus = "other"
)

// ParseOrderStatus maps a raw status alias; empty means unresolved
func ParseOrderStatus(alias string) OrderStatus {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "":
		return ""
	case "waiting_payment":
		return StatusWaitingPayment
	case "cancelled", "canceled":
		return StatusCancelled
	case "on_carriage":
		return StatusOnCarriage
	case "delivered":
		return StatusDelivered
	default:
		return StatusOther
	}
}

// ResponseKind is the variant tag of an automated answer
type ResponseKind string

const (
	ResponseText  ResponseKind = "text"
	ResponseAudio ResponseKind = "audio"
	ResponseImage ResponseKind = "image"
	ResponseVideo ResponseKind = "video"
)

// MediaKinds lists the response kinds that carry a media file
var MediaKinds = []ResponseKind{ResponseAudio, ResponseImage, ResponseVideo}

// ParseResponseKind accepts the English kinds plus the Portuguese
// aliases used by older question exports ("texto", "imagem").
func ParseResponseKind(kind string) (ResponseKind, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "text", "texto":
		return ResponseText, true
	case "audio":
		return ResponseAudio, true
	case "image", "imagem":
		return ResponseImage, true
	case "video":
		return ResponseVideo, true
	default:
		return "", false
	}
}

// IsMedia reports whether the kind requires a media file
func (k ResponseKind) IsMedia() bool {
	return k == ResponseAudio || k == ResponseImage || k == ResponseVideo
}
