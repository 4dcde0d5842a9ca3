package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/config"
	"github.com/mentorpay/mentorpay/internal/migration"
	"github.com/mentorpay/mentorpay/internal/observability"
	"github.com/mentorpay/mentorpay/internal/seed"
	"github.com/mentorpay/mentorpay/internal/server"
	"github.com/mentorpay/mentorpay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// HTTP surface; pulls in the domain modules it serves.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
