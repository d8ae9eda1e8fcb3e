package main

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rjvb7424/learn-it-now/internal/config"
	"github.com/rjvb7424/learn-it-now/internal/migration"
	"github.com/rjvb7424/learn-it-now/internal/observability"
	"github.com/rjvb7424/learn-it-now/internal/seed"
	"github.com/rjvb7424/learn-it-now/internal/server"
	"github.com/rjvb7424/learn-it-now/internal/stripeconnect"
	"github.com/rjvb7424/learn-it-now/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		stripeconnect.Module,
		server.Module,
		fx.Invoke(seedDevContent),
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

func seedDevContent(cfg config.Config, conn *gorm.DB, log *zap.Logger) error {
	switch strings.ToLower(cfg.Environment) {
	case "dev", "development", "local":
	default:
		return nil
	}
	if err := seed.EnsureDemoContent(conn); err != nil {
		return err
	}
	log.Info("demo content seeded")
	return nil
}
