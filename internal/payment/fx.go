package payment

import (
	"github.com/alphaedge/backend/internal/config"
	paymentdomain "github.com/alphaedge/backend/internal/payment/domain"
	"github.com/alphaedge/backend/internal/payment/gateway/razorpay"
	"github.com/alphaedge/backend/internal/payment/repository"
	paymentservice "github.com/alphaedge/backend/internal/payment/service"
	"github.com/alphaedge/backend/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config) paymentdomain.Gateway {
		return razorpay.New(cfg.RazorpayWebhookSecret)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(webhook.NewService),
)
