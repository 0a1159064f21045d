package cmd

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/internal/user/memory"
	userPostgres "github.com/aura-baza/aura-hr/internal/user/postgres"
)

// storeHandle is an opened user store plus what /health should check and
// how to release it.
type storeHandle struct {
	Store  user.Store
	Checks map[string]user.Pinger
	Static map[string]map[string]any
	Close  func() error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func openStore(ctx context.Context, cfg internal.DatabaseConfig, lg *slog.Logger) (*storeHandle, error) {
	switch cfg.Driver {
	case internal.DriverMemory:
		lg.Info("using in-memory user store")
		return &storeHandle{
			Store:  memory.NewStore(),
			Static: map[string]map[string]any{"user_store": {"driver": internal.DriverMemory}},
			Close:  func() error { return nil },
		}, nil

	case internal.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.Source, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer
		sqlDB.SetMaxOpenConns(1)

		store := userPostgres.NewUserStore(db)
		if err := store.AutoMigrate(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		lg.Info("using sqlite user store", "source", cfg.Source)
		return &storeHandle{
			Store:  store,
			Checks: map[string]user.Pinger{"sqlite": store},
			Close:  sqlDB.Close,
		}, nil

	case internal.DriverPostgres:
		conn, err := initDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn.DB}), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open gorm on postgres: %w", err)
		}
		lg.Info("using postgres user store")
		return &storeHandle{
			Store:  userPostgres.NewUserStore(db),
			Checks: map[string]user.Pinger{"postgres": pingFunc(conn.PingContext)},
			Close:  conn.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// initDB initializes the database connection
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.ConnectContext(ctx, driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
