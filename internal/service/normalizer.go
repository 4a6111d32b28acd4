package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/templates"
)

const (
	defaultCustomerName = "Cliente"
	pixExpirationPrefix = "⚠️ Expira em: "
)

// NormalizerConfig holds the store links and locale used when rendering
type NormalizerConfig struct {
	Locale      string
	CartBaseURL string
	TrackingURL string
}

// EventNormalizer turns order events into the rendered message parts to send
type EventNormalizer struct {
	templates *templates.Store
	printer   *message.Printer
	cfg       NormalizerConfig
	logger    *zap.Logger
}

// NewEventNormalizer creates an event normalizer
func NewEventNormalizer(store *templates.Store, cfg NormalizerConfig, logger *zap.Logger) *EventNormalizer {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		logger.Warn("Unknown locale, falling back to pt-BR", zap.String("locale", cfg.Locale), zap.Error(err))
		tag = language.BrazilianPortuguese
	}

	return &EventNormalizer{
		templates: store,
		printer:   message.NewPrinter(tag),
		cfg:       cfg,
		logger:    logger,
	}
}

// Classify returns the ordered message parts for an event. It never fails:
// events with missing data or no template produce no messages.
func (n *EventNormalizer) Classify(event *domain.OrderEvent) []domain.RenderedMessage {
	logger := n.logger.With(
		zap.String("order_id", event.OrderID),
		zap.String("event", string(event.EventType)),
	)

	key := templates.Key{Event: event.EventType}
	if event.EventType == domain.EventCartReminder {
		if len(event.LineItems) == 0 {
			logger.Info("Cart reminder without items, nothing to send")
			return nil
		}
	} else {
		if !event.HasCustomer() || event.OrderStatus == "" {
			logger.Warn("Event is missing customer or order status, dropping",
				zap.Bool("has_customer", event.HasCustomer()),
				zap.String("status", string(event.OrderStatus)),
			)
			return nil
		}
		key.Method = event.ResolvedPaymentMethod()
		key.Status = event.OrderStatus
	}

	tmpl, ok := n.templates.Lookup(key)
	if !ok {
		logger.Info("No template for event",
			zap.String("payment_method", string(key.Method)),
			zap.String("status", string(key.Status)),
		)
		return nil
	}

	parts := templates.RenderTemplate(tmpl, n.Fields(event))
	messages := make([]domain.RenderedMessage, len(parts))
	for i, text := range parts {
		messages[i] = domain.RenderedMessage{
			Template: tmpl.Name,
			Part:     i + 1,
			Text:     text,
		}
	}

	logger.Info("Event classified",
		zap.String("family", string(tmpl.Family)),
		zap.String("template", tmpl.Name),
		zap.Int("parts", len(messages)),
	)
	return messages
}

// Fields derives the placeholder values of an event
func (n *EventNormalizer) Fields(event *domain.OrderEvent) templates.Fields {
	expiration := ""
	if event.PaymentExtras.PixExpiration != "" {
		expiration = pixExpirationPrefix + event.PaymentExtras.PixExpiration
	}

	return templates.Fields{
		templates.FieldCustomerName:         customerName(event.Customer),
		templates.FieldProductsList:         productsList(event.LineItems),
		templates.FieldOrderDetails:         orderDetails(event.LineItems),
		templates.FieldItemCount:            strconv.Itoa(itemCount(event.LineItems)),
		templates.FieldOrderValue:           n.Money(event.Totals.WithDiscount),
		templates.FieldTotalWithoutDiscount: n.Money(event.Totals.WithoutDiscount),
		templates.FieldPurchaseURL:          n.cartURL(event.LineItems),
		templates.FieldReorderURL:           event.ReorderURL,
		templates.FieldShippingCode:         event.Tracking.Code,
		templates.FieldShippingURL:          n.cfg.TrackingURL,
		templates.FieldPixQRCode:            event.PaymentExtras.PixCode,
		templates.FieldPixExpirationDate:    expiration,
		templates.FieldBoletoURL:            event.PaymentExtras.BoletoURL,
		templates.FieldBoletoBarcode:        event.PaymentExtras.BoletoBarcode,
	}
}

// Money formats an amount with two decimals and the locale's decimal
// separator. Thousands are not grouped.
func (n *EventNormalizer) Money(amount float64) string {
	return n.printer.Sprint(number.Decimal(amount, number.Scale(2), number.NoSeparator()))
}

func (n *EventNormalizer) cartURL(items []domain.LineItem) string {
	params := make([]string, 0, len(items))
	for _, item := range items {
		if item.CartToken == "" {
			continue
		}
		params = append(params, fmt.Sprintf("%s:%d", item.CartToken, quantity(item)))
	}
	return n.cfg.CartBaseURL + strings.Join(params, ",")
}

func customerName(c domain.Customer) string {
	if c.FirstName != "" {
		return c.FirstName
	}
	if fields := strings.Fields(c.Name); len(fields) > 0 {
		return fields[0]
	}
	return defaultCustomerName
}

func productsList(items []domain.LineItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("• *%s* (quantidade: %d)", title(item, i), quantity(item))
	}
	return strings.Join(lines, "\n\n")
}

func orderDetails(items []domain.LineItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("- %s (quantidade: %d)", title(item, i), quantity(item))
	}
	return strings.Join(lines, "\n")
}

func itemCount(items []domain.LineItem) int {
	total := 0
	for _, item := range items {
		if item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}

func title(item domain.LineItem, index int) string {
	if item.Title != "" {
		return item.Title
	}
	return fmt.Sprintf("Produto %d", index+1)
}

func quantity(item domain.LineItem) int {
	if item.Quantity <= 0 {
		return 1
	}
	return item.Quantity
}
