package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"healthcare-agent/internal/config"
)

// ConnectDB opens the raw connection for the configured driver. The default
// is the sqlite file; postgres DSNs go through pgdriver for deployments that
// host the data remotely.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return sql.Open(sqliteshim.ShimName, cfg.DSN)
	case "postgres":
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// NewDB wraps the connection in bun with the matching dialect.
func NewDB(sqldb *sql.DB, cfg *config.DatabaseConfig) *bun.DB {
	var db *bun.DB
	if cfg.Driver == "postgres" {
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

var tableModels = []any{
	(*Patient)(nil),
	(*Visit)(nil),
	(*Prescription)(nil),
	(*Medication)(nil),
}

// InitDB creates the four tables if they do not exist.
func InitDB(ctx context.Context, db *bun.DB) error {
	for _, model := range tableModels {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DropTables drops the four tables if they exist.
func DropTables(ctx context.Context, db *bun.DB) error {
	for _, model := range tableModels {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns the row count per table.
func Counts(ctx context.Context, db *bun.DB) (map[string]int, error) {
	counts := make(map[string]int, len(tableModels))
	for i, model := range tableModels {
		n, err := db.NewSelect().Model(model).Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", TableNames[i], err)
		}
		counts[TableNames[i]] = n
	}
	return counts, nil
}

// SamplePatients returns up to limit patients for the debug endpoint.
func SamplePatients(ctx context.Context, db *bun.DB, limit int) ([]Patient, error) {
	var patients []Patient
	err := db.NewSelect().Model(&patients).Order("patient_id").Limit(limit).Scan(ctx)
	return patients, err
}

// Ping verifies the connection is usable.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}
