// Package webhook ties signature verification, payload normalization and
// payment processing into one ingest entrypoint for the HTTP layer.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	obsmetrics "github.com/alphaedge/backend/internal/observability/metrics"
	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
	paymentservice "github.com/alphaedge/backend/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Gateway    paymentdomain.Gateway
	PaymentSvc *paymentservice.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	gateway    paymentdomain.Gateway
	paymentSvc *paymentservice.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		gateway:    p.Gateway,
		paymentSvc: p.PaymentSvc,
		obsMetrics: p.ObsMetrics,
	}
}

// Ingest runs one raw webhook delivery through the pipeline. The payload must
// be the unmodified request body; verification happens before any parsing so
// unauthenticated bytes never reach the JSON decoder.
func (s *Service) Ingest(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.gateway.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.String("gateway", s.gateway.Name()))
		return err
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	event, err := s.gateway.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrUnsupportedEvent) {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordWebhookEvent("unsupported", obsmetrics.OutcomeIgnored)
			}
		}
		return err
	}

	return s.paymentSvc.ProcessEvent(ctx, event)
}
