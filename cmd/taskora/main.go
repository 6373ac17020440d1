package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/config"
	"github.com/smallbiznis/taskora/internal/logger"
	"github.com/smallbiznis/taskora/internal/migration"
	"github.com/smallbiznis/taskora/internal/observability"
	"github.com/smallbiznis/taskora/internal/server"
	"github.com/smallbiznis/taskora/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
