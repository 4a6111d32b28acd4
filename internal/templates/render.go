package templates

import (
	"regexp"
)

// Field is a named placeholder value a template may reference as {field}
type Field string

const (
	FieldCustomerName         Field = "customerName"
	FieldProductsList         Field = "productsList"
	FieldOrderDetails         Field = "orderDetails"
	FieldItemCount            Field = "itemCount"
	FieldOrderValue           Field = "orderValue"
	FieldTotalWithoutDiscount Field = "totalWithoutDiscount"
	FieldPurchaseURL          Field = "purchaseUrl"
	FieldReorderURL           Field = "reorderUrl"
	FieldShippingCode         Field = "shippingCode"
	FieldShippingURL          Field = "shippingUrl"
	FieldPixQRCode            Field = "pixQrCode"
	FieldPixExpirationDate    Field = "pixExpirationDate"
	FieldBoletoURL            Field = "boletoUrl"
	FieldBoletoBarcode        Field = "boletoBarcode"
)

// Fields holds the values available to a render
type Fields map[Field]string

var orderFields = []Field{
	FieldCustomerName,
	FieldProductsList,
	FieldOrderDetails,
	FieldItemCount,
	FieldOrderValue,
	FieldTotalWithoutDiscount,
	FieldPurchaseURL,
	FieldReorderURL,
	FieldShippingCode,
	FieldShippingURL,
}

// familyFields is the closed field set each family may reference
var familyFields = map[Family]map[Field]bool{
	FamilyPix:        fieldSet(orderFields, FieldPixQRCode, FieldPixExpirationDate),
	FamilyBoleto:     fieldSet(orderFields, FieldBoletoURL, FieldBoletoBarcode),
	FamilyCreditCard: fieldSet(orderFields),
	FamilyCartReminder: fieldSet([]Field{
		FieldCustomerName,
		FieldProductsList,
		FieldItemCount,
		FieldOrderValue,
		FieldTotalWithoutDiscount,
		FieldPurchaseURL,
	}),
}

func fieldSet(base []Field, extra ...Field) map[Field]bool {
	set := make(map[Field]bool, len(base)+len(extra))
	for _, f := range base {
		set[f] = true
	}
	for _, f := range extra {
		set[f] = true
	}
	return set
}

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Render substitutes {field} placeholders. Fields outside the family's set
// and fields without a value render as empty strings.
func Render(family Family, text string, fields Fields) string {
	allowed := familyFields[family]
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := Field(match[1 : len(match)-1])
		if !allowed[name] {
			return ""
		}
		return fields[name]
	})
}

// UnknownPlaceholders lists placeholders in text outside the family's field set
func UnknownPlaceholders(family Family, text string) []string {
	allowed := familyFields[family]
	var unknown []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !allowed[Field(m[1])] {
			unknown = append(unknown, m[1])
		}
	}
	return unknown
}

// RenderTemplate renders every part of t in order
func RenderTemplate(t Template, fields Fields) []string {
	out := make([]string, len(t.Parts))
	for i, part := range t.Parts {
		out[i] = Render(t.Family, part, fields)
	}
	return out
}
