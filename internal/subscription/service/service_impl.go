package service

import (
	"context"
	"strings"

	"github.com/alphaedge/backend/internal/clock"
	plandomain "github.com/alphaedge/backend/internal/plan/domain"
	subscriptiondomain "github.com/alphaedge/backend/internal/subscription/domain"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     subscriptiondomain.Repository
	PlanRepo plandomain.Repository
	UserRepo userdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     subscriptiondomain.Repository
	planRepo plandomain.Repository
	userRepo userdomain.Repository
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subscription.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
		userRepo: p.UserRepo,
	}
}

func (s *Service) Activate(ctx context.Context, req subscriptiondomain.ActivateRequest) (*subscriptiondomain.Subscription, error) {
	if req.UserID == 0 {
		return nil, subscriptiondomain.ErrInvalidUser
	}
	planID := strings.TrimSpace(req.PlanID)
	if planID == "" {
		return nil, subscriptiondomain.ErrPlanNotFound
	}

	plan, err := s.planRepo.FindByID(ctx, s.db, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, subscriptiondomain.ErrPlanNotFound
	}

	now := s.clock.Now().UTC()
	subscription := &subscriptiondomain.Subscription{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		PlanID:    plan.ID,
		Status:    subscriptiondomain.SubscriptionStatusActive,
		StartAt:   now,
		EndAt:     now.AddDate(0, 0, plan.DurationDays),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, subscription); err != nil {
		return nil, err
	}

	if err := s.refreshEntitlement(ctx, req.UserID); err != nil {
		// The subscription row exists; the snapshot heals on the next
		// entitlement read.
		s.log.Warn("entitlement snapshot update failed",
			zap.String("user_id", req.UserID.String()),
			zap.String("subscription_id", subscription.ID.String()),
			zap.Error(err),
		)
	}

	return subscription, nil
}

// refreshEntitlement points the user snapshot at the active subscription with
// the latest end date. Concurrent activations for the same user converge on
// the same winner regardless of ordering.
func (s *Service) refreshEntitlement(ctx context.Context, userID snowflake.ID) error {
	now := s.clock.Now().UTC()
	latest, err := s.repo.FindLatestActiveByUser(ctx, s.db, userID, now)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}
	return s.userRepo.UpdateEntitlement(ctx, s.db, userID, latest.ID, string(latest.Status), now)
}

func (s *Service) GetUserEntitlement(ctx context.Context, userID snowflake.ID) (*subscriptiondomain.Entitlement, error) {
	if userID == 0 {
		return nil, subscriptiondomain.ErrInvalidUser
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userdomain.ErrNotFound
	}

	now := s.clock.Now().UTC()
	latest, err := s.repo.FindLatestActiveByUser(ctx, s.db, userID, now)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, subscriptiondomain.ErrNoActiveSubscription
	}

	if user.ActiveSubscriptionID == nil || *user.ActiveSubscriptionID != latest.ID {
		if err := s.userRepo.UpdateEntitlement(ctx, s.db, userID, latest.ID, string(latest.Status), now); err != nil {
			s.log.Warn("entitlement snapshot repair failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}

	return &subscriptiondomain.Entitlement{
		UserID:         userID,
		SubscriptionID: latest.ID,
		PlanID:         latest.PlanID,
		Status:         latest.Status,
		StartAt:        latest.StartAt,
		EndAt:          latest.EndAt,
	}, nil
}
