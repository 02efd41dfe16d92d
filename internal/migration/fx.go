package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg *config.Config, node *snowflake.Node, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			log.Named("migrations").Warn("automatic migrations only run on postgres",
				zap.String("type", cfg.DBType),
			)
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if err := seed.EnsurePackages(conn, node); err != nil {
			return err
		}
		return seed.EnsureLaunchCoupons(conn, node)
	}),
)
