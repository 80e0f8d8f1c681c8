package session

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamsPresence(t *testing.T) {
	p := ParseParams("?amt=100&ccy=&title=")

	require.NotNil(t, p.Amount)
	assert.Equal(t, "100", *p.Amount)
	require.NotNil(t, p.Currency)
	assert.Equal(t, "", *p.Currency)
	require.NotNil(t, p.Title)
	assert.Nil(t, p.SubTitle)
	assert.Nil(t, p.Env)
}

func TestParseParamsDecodes(t *testing.T) {
	p := ParseParams("firstName=Jo%20Ann&lastName=O%27Neil&subTitle=Deposit+2")

	assert.Equal(t, "Jo Ann", str(p.FirstName))
	assert.Equal(t, "O'Neil", str(p.LastName))
	assert.Equal(t, "Deposit 2", str(p.SubTitle))
}

func TestParamsValuesRoundTrip(t *testing.T) {
	in := url.Values{}
	in.Set(KeyAmount, "12.50")
	in.Set(KeyCurrency, "GBP")
	in.Set(KeyEnv, "demo")
	in.Set(KeyTitle, "")

	assert.Equal(t, in, ReadParams(in).Values())
}
