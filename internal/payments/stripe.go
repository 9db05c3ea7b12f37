// README: Stripe card payments for sender-prepaid fares.
package payments

import (
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Stripe holds the fare on the sender's card at creation and captures it once
// the order is delivered. Pay-on-delivery orders never touch this path.
type Stripe struct {
	enabled bool
}

func NewStripe(apiKey string) *Stripe {
	if apiKey == "" {
		return &Stripe{}
	}
	stripe.Key = apiKey
	return &Stripe{enabled: true}
}

func (s *Stripe) Enabled() bool { return s.enabled }

// Hold authorizes the fare without capturing. Fares are naira; Stripe wants
// the amount in kobo.
func (s *Stripe) Hold(fare float64, trackingID string) (string, error) {
	if !s.enabled {
		return "", nil
	}
	pi, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(fare * 100))),
		Currency:      stripe.String("ngn"),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Description:   stripe.String(fmt.Sprintf("Dispatch %s", trackingID)),
	})
	if err != nil {
		return "", fmt.Errorf("hold payment: %w", err)
	}
	return pi.ID, nil
}

// Capture settles a previously held payment.
func (s *Stripe) Capture(intentID string) error {
	if !s.enabled || intentID == "" {
		return nil
	}
	if _, err := paymentintent.Capture(intentID, &stripe.PaymentIntentCaptureParams{}); err != nil {
		return fmt.Errorf("capture payment: %w", err)
	}
	return nil
}

// Release voids the hold when an order is cancelled before delivery.
func (s *Stripe) Release(intentID string) error {
	if !s.enabled || intentID == "" {
		return nil
	}
	if _, err := paymentintent.Cancel(intentID, nil); err != nil {
		return fmt.Errorf("release payment: %w", err)
	}
	return nil
}
