package address

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
)

const (
	// mobilePrefix is the leading digit of nine-digit mobile subscriber numbers
	mobilePrefix = "9"
	areaCodeLen  = 2
	// tenDigitNational is a national number missing its mobile prefix
	tenDigitNational = 10
)

// Resolver derives channel addresses from customer phone numbers
type Resolver struct {
	region      string
	countryCode string
	suffix      string
	logger      *zap.Logger
}

// NewResolver creates a resolver for a home region (e.g. "BR") and a
// channel address suffix (e.g. "@c.us")
func NewResolver(region, suffix string, logger *zap.Logger) *Resolver {
	region = strings.ToUpper(region)
	return &Resolver{
		region:      region,
		countryCode: strconv.Itoa(phonenumbers.GetCountryCodeForRegion(region)),
		suffix:      suffix,
		logger:      logger,
	}
}

// Resolve returns the primary address for a raw phone number. Numbers that
// fail validation are recovered best-effort; only input without any digit
// yields false.
func (r *Resolver) Resolve(raw string) (string, bool) {
	digits := onlyDigits(raw)
	if digits == "" {
		return "", false
	}

	if e164, ok := r.validate(raw); ok {
		return e164 + r.suffix, true
	}

	if len(digits) == tenDigitNational {
		candidate := digits[:areaCodeLen] + mobilePrefix + digits[areaCodeLen:]
		if e164, ok := r.validate(candidate); ok {
			r.logger.Info("Recovered phone number by adding mobile prefix",
				zap.String("raw", raw),
				zap.String("resolved", e164),
			)
			return e164 + r.suffix, true
		}
	}

	r.logger.Warn("Phone number failed validation, using raw digits", zap.String("raw", raw))
	return digits + r.suffix, true
}

// Alternate derives the secondary address for a primary address whose
// subscriber number carries the extra leading mobile digit.
func (r *Resolver) Alternate(primary string) (string, bool) {
	number, suffix := primary, ""
	if at := strings.Index(primary, "@"); at >= 0 {
		number, suffix = primary[:at], primary[at:]
	}

	if number == "" || onlyDigits(number) != number {
		return "", false
	}
	if !strings.HasPrefix(number, r.countryCode) {
		return "", false
	}

	national := number[len(r.countryCode):]
	if len(national) <= areaCodeLen {
		return "", false
	}
	area, subscriber := national[:areaCodeLen], national[areaCodeLen:]
	if !strings.HasPrefix(subscriber, mobilePrefix) || len(subscriber) < 9 {
		return "", false
	}

	return r.countryCode + area + subscriber[1:] + suffix, true
}

func (r *Resolver) validate(raw string) (string, bool) {
	num, err := phonenumbers.Parse(raw, r.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	e164 := phonenumbers.Format(num, phonenumbers.E164)
	return strings.TrimPrefix(e164, "+"), true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
