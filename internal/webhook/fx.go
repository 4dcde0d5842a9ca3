package webhook

import (
	"github.com/mentorpay/mentorpay/internal/webhook/repository"
	"github.com/mentorpay/mentorpay/internal/webhook/service"
	"go.uber.org/fx"
)

var Module = fx.Module("webhook.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewDispatcher),
	fx.Provide(service.NewService),
)
