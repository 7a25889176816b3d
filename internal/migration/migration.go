package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"gorm.io/gorm"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var embeddedMigrations embed.FS

// Models lists the schema in dependency order.
func Models() []any {
	return []any{
		&domain.Allergen{},
		&domain.Supplement{},
		&domain.Category{},
		&domain.Meal{},
		&domain.MealAllergen{},
		&domain.MealSupplement{},
		&domain.PlanMeal{},
		&domain.PlanMetadata{},
		&domain.APIMetadata{},
	}
}

// Apply brings the schema up to date for the given store type.
// SQLite has no SQL migration set and is built from the gorm models.
func Apply(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	switch normalizeType(dbType) {
	case "sqlite":
		return AutoMigrate(conn)
	case "mysql", "postgres":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, dbType)
	default:
		return fmt.Errorf("unsupported %s type", dbType)
	}
}

func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}

// RunMigrations applies the embedded SQL migrations for mysql or postgres.
func RunMigrations(db *sql.DB, dbType string) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	name := normalizeType(dbType)
	sub, err := fs.Sub(embeddedMigrations, "migrations/"+name)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var driver database.Driver
	switch name {
	case "mysql":
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case "postgres":
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("no migrations for %s", dbType)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

func normalizeType(dbType string) string {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "mysql", "mariadb":
		return "mysql"
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite":
		return "sqlite"
	default:
		return strings.ToLower(strings.TrimSpace(dbType))
	}
}
