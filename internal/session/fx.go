package session

import (
	"github.com/mentorpay/mentorpay/internal/session/repository"
	"github.com/mentorpay/mentorpay/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
