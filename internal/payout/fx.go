package payout

import (
	"github.com/mentorpay/mentorpay/internal/payout/repository"
	"github.com/mentorpay/mentorpay/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
