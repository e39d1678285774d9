// Package payment abstracts the checkout provider for credit package and
// membership purchases. Only the stub provider ships today; real payment
// processing is intentionally out of scope.
package payment

import (
	"context"
	"time"
)

type CheckoutRequest struct {
	UserID         uint
	AmountCents    int
	Currency       string
	IdempotencyKey string
	Description    string
	ExpiresIn      time.Duration
}

type CheckoutResponse struct {
	Reference   string
	Status      string
	CheckoutURL string
	ExpiresAt   time.Time
}

type Provider interface {
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	VerifyCheckout(ctx context.Context, reference string) (bool, error)
}
