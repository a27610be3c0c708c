package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
	plandomain "github.com/alphaedge/backend/internal/plan/domain"
	subscriptiondomain "github.com/alphaedge/backend/internal/subscription/domain"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
)

type profileUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type profileSubscription struct {
	ID      string    `json:"id"`
	PlanID  string    `json:"plan_id"`
	Status  string    `json:"status"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type profilePlan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	PriceDisplay string `json:"price_display"`
	DurationDays int    `json:"duration_days"`
	Description  string `json:"description,omitempty"`
	Features     any    `json:"features,omitempty"`
}

type profileResponse struct {
	User         profileUser          `json:"user"`
	Subscription *profileSubscription `json:"subscription"`
	Plan         *profilePlan         `json:"plan"`
}

// GetUserProfile returns the user together with their reconciled entitlement
// and the plan behind it. Users can only read their own profile.
func (s *Server) GetUserProfile(c *gin.Context) {
	userID, ok := s.authorizedUserID(c)
	if !ok {
		return
	}

	user, err := s.userRepo.FindByID(c.Request.Context(), s.db, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if user == nil {
		AbortWithError(c, userdomain.ErrNotFound)
		return
	}

	resp := profileResponse{
		User: profileUser{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		},
	}

	entitlement, err := s.subscriptionSvc.GetUserEntitlement(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, subscriptiondomain.ErrNoActiveSubscription) {
		AbortWithError(c, err)
		return
	}
	if entitlement != nil {
		resp.Subscription = &profileSubscription{
			ID:      entitlement.SubscriptionID.String(),
			PlanID:  entitlement.PlanID,
			Status:  string(entitlement.Status),
			StartAt: entitlement.StartAt,
			EndAt:   entitlement.EndAt,
		}

		plan, err := s.planRepo.FindByID(c.Request.Context(), s.db, entitlement.PlanID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if plan != nil {
			resp.Plan = planView(plan)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListUserPayments(c *gin.Context) {
	userID, ok := s.authorizedUserID(c)
	if !ok {
		return
	}

	payments, err := s.paymentSvc.ListUserPayments(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		item := gin.H{
			"id":                 p.ID.String(),
			"gateway_payment_id": p.GatewayPaymentID,
			"amount":             p.Amount,
			"amount_display":     paymentdomain.FormatMajorUnits(p.Amount),
			"currency":           p.Currency,
			"status":             p.Status,
			"method":             p.Method,
			"created_at":         p.CreatedAt,
		}
		if p.SubscriptionID != nil {
			item["subscription_id"] = p.SubscriptionID.String()
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"payments": items})
}

func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.planRepo.List(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]*profilePlan, 0, len(plans))
	for i := range plans {
		items = append(items, planView(&plans[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plans": items})
}

func (s *Server) GetPlanByID(c *gin.Context) {
	plan, err := s.planRepo.FindByID(c.Request.Context(), s.db, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if plan == nil {
		AbortWithError(c, plandomain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, planView(plan))
}

// authorizedUserID parses the :id path param and checks it against the token
// subject. Responds 403 when a user reads someone else's resources.
func (s *Server) authorizedUserID(c *gin.Context) (snowflake.ID, bool) {
	userID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}

	claims := claimsFromContext(c)
	if claims == nil {
		AbortWithError(c, ErrUnauthorized)
		return 0, false
	}
	if claims.UserID != userID {
		AbortWithError(c, ErrForbidden)
		return 0, false
	}
	return userID, true
}

func planView(plan *plandomain.Plan) *profilePlan {
	view := &profilePlan{
		ID:           plan.ID,
		Name:         plan.Name,
		Price:        plan.Price,
		PriceDisplay: paymentdomain.FormatMajorUnits(plan.Price),
		DurationDays: plan.DurationDays,
		Description:  plan.Description,
	}
	if len(plan.Features) > 0 {
		view.Features = plan.Features
	}
	return view
}
