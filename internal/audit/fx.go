package audit

import (
	"github.com/mentorpay/mentorpay/internal/audit/repository"
	"github.com/mentorpay/mentorpay/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
