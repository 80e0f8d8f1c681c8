// services/portal/handlers/types.go
package handlers

import "github.com/example/payment-portal/internal/session"

type SessionOut struct {
	ID      string           `json:"id"`
	Session session.Snapshot `json:"session"`
}

type PaymentErrorsIn struct {
	Errors []string `json:"errors" validate:"required"`
}

type CompleteIn struct {
	Reference     string `json:"reference"`
	Status        string `json:"status" validate:"required"`
	PaymentMethod string `json:"payment_method"`
}

type ErrorOut struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
