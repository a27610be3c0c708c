package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{}}}}`)

	reqHeader := http.Header{}
	reqHeader.Set("X-Razorpay-Signature", signPayload(secret, payload))

	gateway := New(secret)
	if err := gateway.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	reqHeader.Set("X-Razorpay-Signature", signPayload("wrong", payload))
	if err := gateway.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error, got %v", err)
	}

	reqHeader.Del("X-Razorpay-Signature")
	if err := gateway.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error for missing header, got %v", err)
	}
}

func TestVerifyRawBytes(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"event": "payment.captured",  "payload": {"payment": {"entity": {}}}}`)

	reqHeader := http.Header{}
	reqHeader.Set("X-Razorpay-Signature", signPayload(secret, payload))

	gateway := New(secret)
	if err := gateway.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	// Semantically equal JSON with different byte layout must not verify.
	reserialized := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{}}}}`)
	if err := gateway.Verify(context.Background(), reserialized, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature for re-serialized body, got %v", err)
	}
}

func TestParsePaymentEvent(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	userID := node.Generate()

	payment := map[string]any{
		"id":       "pay_ABC123",
		"order_id": "order_XYZ",
		"amount":   150000,
		"currency": "inr",
		"method":   "upi",
		"notes": map[string]any{
			"user_id": userID.String(),
			"plan_id": "pro",
		},
	}

	tests := []struct {
		name     string
		envelope map[string]any
		wantKind paymentdomain.EventKind
	}{{
		name: "captured with entity wrapper",
		envelope: map[string]any{
			"event":   "payment.captured",
			"payload": map[string]any{"payment": map[string]any{"entity": payment}},
		},
		wantKind: paymentdomain.EventKindCaptured,
	}, {
		name: "captured without entity wrapper",
		envelope: map[string]any{
			"event":   "payment.captured",
			"payload": map[string]any{"payment": payment},
		},
		wantKind: paymentdomain.EventKindCaptured,
	}, {
		name: "failed",
		envelope: map[string]any{
			"event":   "payment.failed",
			"payload": map[string]any{"payment": map[string]any{"entity": payment}},
		},
		wantKind: paymentdomain.EventKindFailed,
	}}

	gateway := New("whsec_test")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.envelope)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			event, err := gateway.Parse(context.Background(), payload)
			if err != nil {
				t.Fatalf("parse event: %v", err)
			}
			if event.Kind != tt.wantKind {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, event.Kind)
			}
			if event.GatewayPaymentID != "pay_ABC123" {
				t.Fatalf("expected payment id pay_ABC123, got %s", event.GatewayPaymentID)
			}
			if event.Amount != 150000 {
				t.Fatalf("expected amount 150000, got %d", event.Amount)
			}
			if event.Currency != "INR" {
				t.Fatalf("expected currency INR, got %s", event.Currency)
			}
			if event.UserID != userID {
				t.Fatalf("expected user %s, got %s", userID, event.UserID)
			}
			if event.PlanID != "pro" {
				t.Fatalf("expected plan pro, got %s", event.PlanID)
			}
		})
	}
}

func TestParseNumericUserNote(t *testing.T) {
	gateway := New("whsec_test")

	// Snowflake ids exceed 2^53, so a JSON-number note must keep every digit.
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","amount":49900,"currency":"INR","notes":{"user_id":1859962178959024128,"plan_id":"basic"}}}}}`)
	event, err := gateway.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if got := event.UserID.String(); got != "1859962178959024128" {
		t.Fatalf("expected user id 1859962178959024128, got %s", got)
	}

	// Non-integer numeric notes cannot name a user.
	payload = []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","amount":49900,"currency":"INR","notes":{"user_id":12.5,"plan_id":"basic"}}}}}`)
	if _, err := gateway.Parse(context.Background(), payload); !errors.Is(err, paymentdomain.ErrMissingField) {
		t.Fatalf("expected missing field for fractional user id, got %v", err)
	}
}

func TestParseRejections(t *testing.T) {
	gateway := New("whsec_test")

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{{
		name:    "malformed json",
		payload: `{"event":`,
		wantErr: paymentdomain.ErrInvalidPayload,
	}, {
		name:    "unsupported event",
		payload: `{"event":"order.paid","payload":{"payment":{"entity":{"id":"pay_1"}}}}`,
		wantErr: paymentdomain.ErrUnsupportedEvent,
	}, {
		name:    "missing payment id",
		payload: `{"event":"payment.captured","payload":{"payment":{"entity":{"amount":100}}}}`,
		wantErr: paymentdomain.ErrInvalidEvent,
	}, {
		name:    "missing user note",
		payload: `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","notes":{"plan_id":"pro"}}}}}`,
		wantErr: paymentdomain.ErrMissingField,
	}, {
		name:    "missing plan note",
		payload: `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","notes":{"user_id":"123456789"}}}}}`,
		wantErr: paymentdomain.ErrMissingField,
	}, {
		name:    "missing payment object",
		payload: `{"event":"payment.captured","payload":{}}`,
		wantErr: paymentdomain.ErrInvalidPayload,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.Parse(context.Background(), []byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
