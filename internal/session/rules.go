package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultEnv              = "prod"
	DefaultTitle            = "Beyond Academy"
	DefaultMaxPaymentNumber = 1
)

// CallbackRoute is where the workflow system expects to hear about a payment
// for a given payment number, and which CRM entity type it updates.
type CallbackRoute struct {
	EntityType string
	URL        string
}

// DefaultCallbackRoutes keyed by payment number.
var DefaultCallbackRoutes = map[int]CallbackRoute{
	1: {EntityType: "Lead", URL: "https://flow.zoho.com/699449867/flow/webhook/incoming?zapikey=1001.4d28aad7882cd97478c0156d4998784d.afea37c18f1a9f73284b8eb6b80b444c&isdebug=false"},
	2: {EntityType: "Contact", URL: "https://flow.zoho.com/699449867/flow/webhook/incoming?zapikey=1001.bb385eeeef5bb91d183c1c5e7653ca44.52199737f38cd0523b96c604b84a4a4d&isdebug=false"},
	3: {EntityType: "Contact", URL: "https://flow.zoho.com/699449867/flow/webhook/incoming?zapikey=1001.3bf65dc00dbb0c2b545f656346b4d220.b86c730ad18441b545fbf158b4cbeb79&isdebug=false"},
}

// PortalCodes maps a settlement currency to the processor portal for it.
var PortalCodes = map[string]string{
	"AUD": "BYA",
	"EUR": "BDE",
	"GBP": "BYG",
	"JPY": "BAJ",
	"SEK": "BAS",
	"USD": "BAU",
}

// PortalCode returns "" for a currency without a portal. Lookup is case sensitive.
func PortalCode(ccy string) string {
	return PortalCodes[ccy]
}

// Validate returns the configuration errors for p in a fixed order. A
// maxPaymentNumber below 1 means DefaultMaxPaymentNumber.
func Validate(p Params, maxPaymentNumber int) []string {
	if maxPaymentNumber < 1 {
		maxPaymentNumber = DefaultMaxPaymentNumber
	}
	errs := []string{}
	addIf := func(cond bool, msg string) {
		if cond {
			errs = append(errs, msg)
		}
	}

	ccy := str(p.Currency)
	addIf(missing(p.Currency), "Currency code not supplied")
	addIf(!missing(p.Currency) && utf8.RuneCountInString(ccy) != 3,
		fmt.Sprintf("Invalid currency code supplied (%s)", ccy))

	addIf(missing(p.EntityID), "Zoho CRM entity id not supplied")

	num := str(p.PaymentNumber)
	addIf(missing(p.PaymentNumber), "Payment number not supplied")
	if !missing(p.PaymentNumber) {
		n, ok := parseWhole(num)
		addIf(!ok || n < 1 || n > maxPaymentNumber, fmt.Sprintf("Invalid payment number (%s)", num))
	}

	amt := str(p.Amount)
	addIf(missing(p.Amount), "Amount not supplied")
	if !missing(p.Amount) {
		v, ok := parseNumber(amt)
		addIf(!ok || v <= 0, fmt.Sprintf("Invalid amount (%s)", amt))
	}
	return errs
}

// RouteFor maps a payment number to its callback route; anything that is not
// a key of routes yields the zero route.
func RouteFor(num *string, routes map[int]CallbackRoute) CallbackRoute {
	n, ok := parseWhole(str(num))
	if !ok {
		return CallbackRoute{}
	}
	return routes[n]
}

// parseNumber accepts finite decimal numbers with surrounding whitespace.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseWhole truncates a numeric string toward zero, so "1.9" is 1.
func parseWhole(s string) (int, bool) {
	v, ok := parseNumber(s)
	if !ok || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(v)), true
}
