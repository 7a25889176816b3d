package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/importjob"
	"github.com/smallbiznis/mensaplan/internal/mealplan"
	"github.com/smallbiznis/mensaplan/internal/migration"
	"github.com/smallbiznis/mensaplan/internal/observability"
	"github.com/smallbiznis/mensaplan/internal/scheduler"
	"github.com/smallbiznis/mensaplan/internal/upstream"
	"github.com/smallbiznis/mensaplan/pkg/db"
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

		upstream.Module,
		mealplan.Module,
		importjob.Module,

		// No server module!
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}
	return node
}
