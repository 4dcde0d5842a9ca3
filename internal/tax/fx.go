package tax

import (
	"github.com/mentorpay/mentorpay/internal/tax/repository"
	"github.com/mentorpay/mentorpay/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
