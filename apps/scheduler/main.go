package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/coursesync/internal/billing"
	"github.com/smallbiznis/coursesync/internal/catalog"
	"github.com/smallbiznis/coursesync/internal/clock"
	"github.com/smallbiznis/coursesync/internal/config"
	"github.com/smallbiznis/coursesync/internal/enrollment"
	"github.com/smallbiznis/coursesync/internal/identity"
	"github.com/smallbiznis/coursesync/internal/migration"
	"github.com/smallbiznis/coursesync/internal/observability"
	"github.com/smallbiznis/coursesync/internal/scheduler"
	"github.com/smallbiznis/coursesync/internal/synclog"
	"github.com/smallbiznis/coursesync/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain services required by the sweep.
		catalog.Module,
		identity.Module,
		billing.Module,
		enrollment.Module,
		synclog.Module,

		// No server module.
		scheduler.Module,
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
