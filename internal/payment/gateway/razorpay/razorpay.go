// Package razorpay normalizes Razorpay webhook deliveries into payment events.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
)

const signatureHeader = "X-Razorpay-Signature"

type Gateway struct {
	webhookSecret string
}

func New(webhookSecret string) *Gateway {
	return &Gateway{webhookSecret: strings.TrimSpace(webhookSecret)}
}

func (g *Gateway) Name() string { return "razorpay" }

// Verify checks the HMAC-SHA256 hex signature Razorpay computes over the raw
// request body.
func (g *Gateway) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if g.webhookSecret == "" {
		return paymentdomain.ErrInvalidSignature
	}
	signature := strings.TrimSpace(headers.Get(signatureHeader))
	if signature == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (g *Gateway) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var envelope razorpayEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	switch strings.TrimSpace(envelope.Event) {
	case "payment.captured":
		return g.parsePayment(envelope, payload, paymentdomain.EventKindCaptured)
	case "payment.failed":
		return g.parsePayment(envelope, payload, paymentdomain.EventKindFailed)
	default:
		return nil, paymentdomain.ErrUnsupportedEvent
	}
}

type razorpayEnvelope struct {
	Event   string          `json:"event"`
	Payload razorpayPayload `json:"payload"`
}

type razorpayPayload struct {
	Payment json.RawMessage `json:"payment"`
}

type razorpayPaymentWrapper struct {
	Entity json.RawMessage `json:"entity"`
}

type razorpayPayment struct {
	ID       string         `json:"id"`
	OrderID  string         `json:"order_id"`
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Method   string         `json:"method"`
	Notes    map[string]any `json:"notes"`
}

func (g *Gateway) parsePayment(envelope razorpayEnvelope, payload []byte, kind paymentdomain.EventKind) (*paymentdomain.PaymentEvent, error) {
	payment, err := decodePayment(envelope.Payload.Payment)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(payment.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	userRaw := readNote(payment.Notes, "user_id")
	if userRaw == "" {
		return nil, paymentdomain.ErrMissingField
	}
	userID, err := snowflake.ParseString(userRaw)
	if err != nil {
		return nil, paymentdomain.ErrMissingField
	}
	planID := readNote(payment.Notes, "plan_id")
	if planID == "" {
		return nil, paymentdomain.ErrMissingField
	}

	return &paymentdomain.PaymentEvent{
		Kind:             kind,
		GatewayPaymentID: payment.ID,
		GatewayOrderID:   strings.TrimSpace(payment.OrderID),
		Amount:           payment.Amount,
		Currency:         strings.ToUpper(strings.TrimSpace(payment.Currency)),
		Method:           strings.TrimSpace(payment.Method),
		UserID:           userID,
		PlanID:           planID,
		RawPayload:       payload,
	}, nil
}

// decodePayment accepts both wire layouts Razorpay has shipped: the payment
// object nested under an "entity" key and the payment object placed directly
// under "payload.payment".
func decodePayment(raw json.RawMessage) (*razorpayPayment, error) {
	if len(raw) == 0 {
		return nil, paymentdomain.ErrInvalidPayload
	}

	var wrapper razorpayPaymentWrapper
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	body := raw
	if len(wrapper.Entity) > 0 && string(wrapper.Entity) != "null" {
		body = wrapper.Entity
	}

	// UseNumber keeps note values as exact decimal strings; a float64 round
	// trip would corrupt numeric ids above 2^53.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payment razorpayPayment
	if err := dec.Decode(&payment); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	return &payment, nil
}

func readNote(notes map[string]any, key string) string {
	if notes == nil {
		return ""
	}
	value, ok := notes[key]
	if !ok {
		return ""
	}
	switch cast := value.(type) {
	case string:
		return strings.TrimSpace(cast)
	case json.Number:
		return cast.String()
	}
	return ""
}
