package database

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/schema"
	"net/url"
)

// Dialector picks the gorm dialector for the configured driver.
func Dialector(c *config.Configuration) (gorm.Dialector, error) {
	switch c.Database.Driver {
	case config.DriverPostgres:
		dsn := url.URL{
			User:     url.UserPassword(c.Database.Username, c.Database.Password),
			Scheme:   "postgres",
			Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
			Path:     c.Database.DatabaseName,
			RawQuery: (&url.Values{"sslmode": []string{c.Database.SslMode}}).Encode(),
		}
		return postgres.Open(dsn.String()), nil
	case config.DriverSqlite:
		return sqlite.Open(c.Database.Path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
}

func InitDatabase(c *config.Configuration, l logging.Logger) (*gorm.DB, error) {
	l.LogInfof(logging.GetLogTypeInitialization(), "Initializing Database (%s)", c.Database.Driver)

	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logging.InitGormLogger(c)})
	if err != nil {
		l.LogErrorf(nil, "error initializing database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.LogErrorf(nil, "error setting connection properties on db conn pool")
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Database.ConnMaxLifetime.Duration)

	l.LogDebug(nil, "connected to Database")

	if err := Migrate(db, l); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates every registered entity in dependency order.
func Migrate(db *gorm.DB, l logging.Logger) error {
	for _, entity := range schema.Entities() {
		if err := db.AutoMigrate(entity.New()); err != nil {
			l.LogErrorf(logging.GetLogTypeInitialization(), "error auto migrating %s: %v", entity.Name, err)
			return fmt.Errorf("migrating %s: %w", entity.Name, err)
		}
	}
	return nil
}
