package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/alphaedge/backend/internal/clock"
	obsmetrics "github.com/alphaedge/backend/internal/observability/metrics"
	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
	subscriptiondomain "github.com/alphaedge/backend/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	SubscriptionSvc subscriptiondomain.Service
	Repo            paymentdomain.Repository
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	subscriptionSvc subscriptiondomain.Service
	repo            paymentdomain.Repository
	obsMetrics      *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("payment.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		subscriptionSvc: p.SubscriptionSvc,
		repo:            p.Repo,
		obsMetrics:      p.ObsMetrics,
	}
}

// ProcessEvent runs one normalized gateway event through the activation
// pipeline: claim the gateway payment id, move the payment to processing, then
// settle it and, for a capture, activate the purchased plan. Every delivery of
// an already-claimed payment returns ErrDuplicateDelivery; the pending to
// processing transition is a compare-and-swap, so concurrent deliveries of the
// same gateway payment id settle exactly once. A crash mid-activation is
// repaired by the entitlement read's reconciliation, not by redelivery.
func (s *Service) ProcessEvent(ctx context.Context, event *paymentdomain.PaymentEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	received := paymentdomain.Payment{
		ID:               s.genID.Generate(),
		UserID:           event.UserID,
		GatewayPaymentID: event.GatewayPaymentID,
		GatewayOrderID:   event.GatewayOrderID,
		Amount:           event.Amount,
		Currency:         event.Currency,
		Status:           paymentdomain.PaymentStatusPending,
		Method:           event.Method,
		RawPayload:       datatypes.JSON(event.RawPayload),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	claimed, err := s.repo.InsertIfAbsent(ctx, s.db, &received)
	if err != nil {
		return err
	}
	stored := &received
	if !claimed {
		stored, err = s.repo.FindByGatewayPaymentID(ctx, s.db, event.GatewayPaymentID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
	}

	owned, err := s.repo.MarkProcessing(ctx, s.db, stored.ID, now)
	if err != nil {
		return err
	}
	if !owned {
		s.recordWebhookEvent(event.Kind, obsmetrics.OutcomeDuplicate)
		return paymentdomain.ErrDuplicateDelivery
	}

	if err := s.settleEvent(ctx, stored, event, now); err != nil {
		s.recordWebhookEvent(event.Kind, obsmetrics.OutcomeFailed)
		return err
	}

	s.recordWebhookEvent(event.Kind, obsmetrics.OutcomeProcessed)
	return nil
}

// FindPayment returns the stored payment for a gateway payment id, or nil.
func (s *Service) FindPayment(ctx context.Context, gatewayPaymentID string) (*paymentdomain.Payment, error) {
	gatewayPaymentID = strings.TrimSpace(gatewayPaymentID)
	if gatewayPaymentID == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}
	return s.repo.FindByGatewayPaymentID(ctx, s.db, gatewayPaymentID)
}

// ListUserPayments returns a user's payments, newest first.
func (s *Service) ListUserPayments(ctx context.Context, userID snowflake.ID) ([]paymentdomain.Payment, error) {
	if userID == 0 {
		return nil, paymentdomain.ErrInvalidEvent
	}
	return s.repo.ListByUser(ctx, s.db, userID)
}

func validateEvent(event *paymentdomain.PaymentEvent) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.GatewayPaymentID = strings.TrimSpace(event.GatewayPaymentID)
	if event.GatewayPaymentID == "" {
		return paymentdomain.ErrInvalidEvent
	}
	if event.UserID == 0 {
		return paymentdomain.ErrMissingField
	}
	event.PlanID = strings.TrimSpace(event.PlanID)
	if event.PlanID == "" {
		return paymentdomain.ErrMissingField
	}
	if len(event.RawPayload) > 0 && !json.Valid(event.RawPayload) {
		return paymentdomain.ErrInvalidPayload
	}
	switch event.Kind {
	case paymentdomain.EventKindCaptured:
		if event.Amount <= 0 {
			return paymentdomain.ErrInvalidEvent
		}
	case paymentdomain.EventKindFailed:
	default:
		return paymentdomain.ErrUnsupportedEvent
	}
	return nil
}

func (s *Service) settleEvent(ctx context.Context, stored *paymentdomain.Payment, event *paymentdomain.PaymentEvent, now time.Time) error {
	switch event.Kind {
	case paymentdomain.EventKindFailed:
		s.log.Info("gateway reported payment failure",
			zap.String("gateway_payment_id", stored.GatewayPaymentID),
			zap.String("user_id", stored.UserID.String()),
			zap.String("amount", paymentdomain.FormatMajorUnits(stored.Amount)),
		)
		return s.repo.MarkStatus(ctx, s.db, stored.ID, paymentdomain.PaymentStatusFailed, now)

	case paymentdomain.EventKindCaptured:
		sub, err := s.subscriptionSvc.Activate(ctx, subscriptiondomain.ActivateRequest{
			UserID: event.UserID,
			PlanID: event.PlanID,
		})
		if err != nil {
			if errors.Is(err, subscriptiondomain.ErrPlanNotFound) {
				if markErr := s.repo.MarkStatus(ctx, s.db, stored.ID, paymentdomain.PaymentStatusFailed, now); markErr != nil {
					s.log.Error("failed to mark payment failed", zap.Error(markErr),
						zap.String("gateway_payment_id", stored.GatewayPaymentID))
				}
				s.log.Warn("captured payment references unknown plan",
					zap.String("gateway_payment_id", stored.GatewayPaymentID),
					zap.String("plan_id", event.PlanID),
				)
			}
			return err
		}

		if err := s.repo.AttachSubscription(ctx, s.db, stored.ID, sub.ID, paymentdomain.PaymentStatusSuccess, now); err != nil {
			return err
		}

		if s.obsMetrics != nil {
			s.obsMetrics.RecordActivation()
		}
		s.log.Info("subscription activated",
			zap.String("gateway_payment_id", stored.GatewayPaymentID),
			zap.String("user_id", stored.UserID.String()),
			zap.String("plan_id", event.PlanID),
			zap.String("subscription_id", sub.ID.String()),
		)
		return nil

	default:
		return paymentdomain.ErrUnsupportedEvent
	}
}

func (s *Service) recordWebhookEvent(kind paymentdomain.EventKind, outcome string) {
	if s.obsMetrics == nil {
		return
	}
	s.obsMetrics.RecordWebhookEvent(string(kind), outcome)
}
