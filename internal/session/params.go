package session

import (
	"net/url"
	"strings"
)

// Query string keys understood by the payment page.
const (
	KeyAmount        = "amt"
	KeyCurrency      = "ccy"
	KeyFirstName     = "firstName"
	KeyLastName      = "lastName"
	KeyEmail         = "email"
	KeyPhone         = "phone"
	KeyAddress       = "address"
	KeyCity          = "city"
	KeyCountry       = "country"
	KeyEnv           = "env"
	KeyEntityID      = "id"
	KeyPaymentNumber = "num"
	KeyTitle         = "title"
	KeySubTitle      = "subTitle"
)

// Params holds the page parameters. A nil field was absent from the query.
type Params struct {
	Amount        *string
	Currency      *string
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	Address       *string
	City          *string
	Country       *string
	Env           *string
	EntityID      *string
	PaymentNumber *string
	Title         *string
	SubTitle      *string
}

// ParseParams reads a raw query string, with or without the leading '?'.
// Pairs with malformed escapes are skipped.
func ParseParams(rawQuery string) Params {
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	return ReadParams(values)
}

func ReadParams(q url.Values) Params {
	get := func(key string) *string {
		if !q.Has(key) {
			return nil
		}
		v := q.Get(key)
		return &v
	}
	return Params{
		Amount:        get(KeyAmount),
		Currency:      get(KeyCurrency),
		FirstName:     get(KeyFirstName),
		LastName:      get(KeyLastName),
		Email:         get(KeyEmail),
		Phone:         get(KeyPhone),
		Address:       get(KeyAddress),
		City:          get(KeyCity),
		Country:       get(KeyCountry),
		Env:           get(KeyEnv),
		EntityID:      get(KeyEntityID),
		PaymentNumber: get(KeyPaymentNumber),
		Title:         get(KeyTitle),
		SubTitle:      get(KeySubTitle),
	}
}

// Values is the inverse of ReadParams: only present fields are set.
func (p Params) Values() url.Values {
	q := url.Values{}
	set := func(key string, v *string) {
		if v != nil {
			q.Set(key, *v)
		}
	}
	set(KeyAmount, p.Amount)
	set(KeyCurrency, p.Currency)
	set(KeyFirstName, p.FirstName)
	set(KeyLastName, p.LastName)
	set(KeyEmail, p.Email)
	set(KeyPhone, p.Phone)
	set(KeyAddress, p.Address)
	set(KeyCity, p.City)
	set(KeyCountry, p.Country)
	set(KeyEnv, p.Env)
	set(KeyEntityID, p.EntityID)
	set(KeyPaymentNumber, p.PaymentNumber)
	set(KeyTitle, p.Title)
	set(KeySubTitle, p.SubTitle)
	return q
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func missing(v *string) bool {
	return v == nil || *v == ""
}
