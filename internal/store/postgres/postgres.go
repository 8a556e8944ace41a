package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goto/sentinel/config"
)

// Open creates a connection pool sized by the db config.
func Open(conf config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}

	if conf.MinOpenConnection > 0 {
		poolConfig.MinConns = int32(conf.MinOpenConnection)
	}
	if conf.MaxOpenConnection > 0 {
		poolConfig.MaxConns = int32(conf.MaxOpenConnection)
	}

	return pgxpool.NewWithConfig(context.Background(), poolConfig)
}
