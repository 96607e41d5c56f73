package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/crimecore/server/internal/config"
)

// Open selects the storage engine from configuration and returns the store
// plus a close function. Migrations run as part of opening a SQL engine.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Store, func(), error) {
	switch cfg.Engine {
	case config.EngineMemory, "":
		log.Info("storage engine: memory (state is lost on exit)")
		return NewMemoryStore(), func() {}, nil

	case config.EnginePostgres:
		q, err := openPostgres(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(q, log), q.Close, nil

	case config.EngineMySQL:
		q, err := openMySQL(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(q, log), q.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage engine %q", cfg.Engine)
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Querier, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	log.Info("storage engine: postgres")
	return NewPgQuerier(pool), nil
}

func openMySQL(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Querier, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	if err := RunMySQLMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	log.Info("storage engine: mysql")
	return NewSQLQuerier(db), nil
}
