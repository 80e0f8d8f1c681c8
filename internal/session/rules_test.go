package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validParams() Params {
	return ParseParams("amt=100&ccy=USD&id=42&num=1&firstName=Jo&lastName=Doe")
}

func TestValidateAcceptsCompleteQuery(t *testing.T) {
	assert.Empty(t, Validate(validParams(), 0))
}

func TestValidateSingleViolation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"negative amount", "amt=-5&ccy=USD&id=42&num=1", "Invalid amount (-5)"},
		{"zero amount", "amt=0&ccy=USD&id=42&num=1", "Invalid amount (0)"},
		{"text amount", "amt=ten&ccy=USD&id=42&num=1", "Invalid amount (ten)"},
		{"no amount", "ccy=USD&id=42&num=1", "Amount not supplied"},
		{"empty amount", "amt=&ccy=USD&id=42&num=1", "Amount not supplied"},
		{"no currency", "amt=100&id=42&num=1", "Currency code not supplied"},
		{"long currency", "amt=100&ccy=EURO&id=42&num=1", "Invalid currency code supplied (EURO)"},
		{"no entity", "amt=100&ccy=USD&num=1", "Zoho CRM entity id not supplied"},
		{"no payment number", "amt=100&ccy=USD&id=42", "Payment number not supplied"},
		{"payment number two", "amt=100&ccy=USD&id=42&num=2", "Invalid payment number (2)"},
		{"payment number zero", "amt=100&ccy=USD&id=42&num=0", "Invalid payment number (0)"},
		{"payment number text", "amt=100&ccy=USD&id=42&num=one", "Invalid payment number (one)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, Validate(ParseParams(tt.query), 0))
		})
	}
}

func TestValidateOrderAndAccumulation(t *testing.T) {
	got := Validate(ParseParams("firstName=Jo"), 0)

	assert.Equal(t, []string{
		"Currency code not supplied",
		"Zoho CRM entity id not supplied",
		"Payment number not supplied",
		"Amount not supplied",
	}, got)
}

func TestValidateMaxPaymentNumber(t *testing.T) {
	p := ParseParams("amt=100&ccy=USD&id=42&num=3")

	assert.Equal(t, []string{"Invalid payment number (3)"}, Validate(p, 1))
	assert.Empty(t, Validate(p, 3))
	assert.Equal(t, []string{"Invalid payment number (4)"},
		Validate(ParseParams("amt=100&ccy=USD&id=42&num=4"), 3))
}

func TestValidateTruncatesPaymentNumber(t *testing.T) {
	assert.Empty(t, Validate(ParseParams("amt=100&ccy=USD&id=42&num=1.9"), 0))
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		num      *string
		wantType string
		wantURL  string
	}{
		{ptr("1"), "Lead", DefaultCallbackRoutes[1].URL},
		{ptr("2"), "Contact", DefaultCallbackRoutes[2].URL},
		{ptr("3"), "Contact", DefaultCallbackRoutes[3].URL},
		{ptr("4"), "", ""},
		{ptr("0"), "", ""},
		{ptr("abc"), "", ""},
		{ptr(""), "", ""},
		{nil, "", ""},
	}
	for _, tt := range tests {
		got := RouteFor(tt.num, DefaultCallbackRoutes)
		assert.Equal(t, tt.wantType, got.EntityType, "num=%v", str(tt.num))
		assert.Equal(t, tt.wantURL, got.URL, "num=%v", str(tt.num))
	}
	assert.NotEqual(t, DefaultCallbackRoutes[2].URL, DefaultCallbackRoutes[3].URL)
}

func TestPortalCode(t *testing.T) {
	for ccy, code := range map[string]string{
		"AUD": "BYA", "EUR": "BDE", "GBP": "BYG", "JPY": "BAJ", "SEK": "BAS", "USD": "BAU",
	} {
		assert.Equal(t, code, PortalCode(ccy))
	}
	for _, ccy := range []string{"", "usd", "CHF", "EURO"} {
		assert.Equal(t, "", PortalCode(ccy), ccy)
	}
}

func ptr(s string) *string { return &s }
