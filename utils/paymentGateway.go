package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrAmountTooLarge = errors.New("amount is too large")
	ErrGateway        = errors.New("payment gateway error")
)

// PaymentGateway creates card payment intents and hands back the client secret.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (string, error)
}

type IntentRequest struct {
	Amount         int64 // minor units
	Currency       string
	IdempotencyKey string
}

// ToMinorUnits converts a decimal price to cents, rounding half away from zero.
func ToMinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := math.Round(price * 100)
	if cents >= math.MaxInt64 {
		return 0, ErrAmountTooLarge
	}
	amount := int64(cents)
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// StripeGateway talks to the Stripe REST API through resty.
type StripeGateway struct {
	client *resty.Client
}

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewStripeGateway(apiURL, secretKey string) *StripeGateway {
	client := resty.New().
		SetBaseURL(apiURL).
		SetAuthToken(secretKey).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &StripeGateway{client: client}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (string, error) {
	if req.Amount <= 0 {
		return "", ErrInvalidAmount
	}

	var intent stripeIntent
	var apiErr stripeError
	r := g.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"amount":                 strconv.FormatInt(req.Amount, 10),
			"currency":               req.Currency,
			"payment_method_types[]": "card",
		}).
		SetResult(&intent).
		SetError(&apiErr)
	if req.IdempotencyKey != "" {
		r.SetHeader("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := r.Post("/payment_intents")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("%w: %d %s", ErrGateway, resp.StatusCode(), msg)
	}
	if intent.ClientSecret == "" {
		return "", fmt.Errorf("%w: response carried no client secret", ErrGateway)
	}
	return intent.ClientSecret, nil
}
