package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/importjob"
	"github.com/smallbiznis/mensaplan/internal/mealplan"
	"github.com/smallbiznis/mensaplan/internal/menu"
	"github.com/smallbiznis/mensaplan/internal/observability"
	"github.com/smallbiznis/mensaplan/internal/server"
	"github.com/smallbiznis/mensaplan/internal/upstream"
	"github.com/smallbiznis/mensaplan/pkg/db"
	"go.uber.org/fx"
)

// The API serves the read views and on-demand imports; schema migrations
// and the periodic import run in other processes.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		upstream.Module,
		mealplan.Module,
		importjob.Module,
		menu.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
