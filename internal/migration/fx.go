package migration

import (
	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Apply(conn, cfg.DBType); err != nil {
			return err
		}
		log.Info("schema up to date", zap.String("db_type", cfg.DBType))

		if cfg.Bootstrap.SeedReference {
			if err := seed.EnsureReference(conn); err != nil {
				return err
			}
			log.Info("reference data seeded")
		}
		return nil
	}),
)
