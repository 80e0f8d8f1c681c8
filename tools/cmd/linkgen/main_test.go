package main

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/payment-portal/internal/session"
)

func TestBuildLink(t *testing.T) {
	link, errs := buildLink("https://pay.example.com/",
		[]string{"100", "USD", "Jo", "Doe", "jo@doe.io", "42", "1"}, 1)

	assert.Empty(t, errs)
	assert.Equal(t,
		"https://pay.example.com/?amt=100&ccy=USD&email=jo%40doe.io&firstName=Jo&id=42&lastName=Doe&num=1",
		link)

	idx := strings.Index(link, "?")
	p := session.ParseParams(link[idx:])
	assert.Equal(t, "Jo", *p.FirstName)
}

func TestBuildLinkReportsErrors(t *testing.T) {
	link, errs := buildLink("https://pay.example.com/?src=mail", []string{"-5", "EURO", "Jo"}, 1)

	assert.True(t, strings.HasPrefix(link, "https://pay.example.com/?src=mail&"))
	assert.Equal(t, []string{
		"Invalid currency code supplied (EURO)",
		"Zoho CRM entity id not supplied",
		"Payment number not supplied",
		"Invalid amount (-5)",
	}, errs)
}

func TestGenerate(t *testing.T) {
	in := "amount,currency,first_name,last_name,email,entity_id,payment_number\n" +
		"100,USD,Jo,Doe,jo@doe.io,42,1\n" +
		"0,GBP,Al,Ray,al@ray.io,43,1\n"
	var out bytes.Buffer

	n, bad, err := generate(csv.NewReader(strings.NewReader(in)), csv.NewWriter(&out), "https://pay.example.com/", 1)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, bad)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"link", "errors"}, rows[0])
	assert.Equal(t, "", rows[1][1])
	assert.Equal(t, "Invalid amount (0)", rows[2][1])
}
