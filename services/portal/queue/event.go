package queue

// PaymentCompleted is published once the processor reports a result, so the
// workflow system behind CallbackURL can pick it up.
type PaymentCompleted struct {
	SessionID     string            `json:"session_id"`
	Reference     string            `json:"reference"`
	Status        string            `json:"status"`
	RawStatus     string            `json:"raw_status"`
	PaymentMethod string            `json:"payment_method"`
	Amount        *float64          `json:"amount"`
	Currency      string            `json:"currency"`
	PortalCode    string            `json:"portal_code"`
	CallbackURL   string            `json:"callback_url"`
	CallbackID    string            `json:"callback_id"`
	Parameters    map[string]string `json:"parameters"`
}
