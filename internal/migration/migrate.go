// Package migration applies the embedded SQL files in lexical order. Each
// file runs in its own transaction and is recorded in schema_migrations.
package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Versions lists the embedded migrations, oldest first.
func Versions() ([]string, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		versions = append(versions, strings.TrimSuffix(entry.Name(), ".sql"))
	}
	sort.Strings(versions)
	return versions, nil
}

// Source returns the SQL of one embedded migration.
func Source(version string) (string, error) {
	raw, err := fs.ReadFile(files, "sql/"+version+".sql")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (int, error) {
	log := logger.Named("migration")

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return 0, err
	}

	versions, err := Versions()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, version := range versions {
		var count int
		if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = $1", version).Scan(&count); err != nil {
			return applied, err
		}
		if count > 0 {
			continue
		}

		source, err := Source(version)
		if err != nil {
			return applied, err
		}

		if err := apply(ctx, pool, version, source); err != nil {
			return applied, err
		}
		applied++
		log.Info("migration applied", zap.String("version", version))
	}

	return applied, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, version, source string) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, source); err != nil {
		return fmt.Errorf("migration %s failed: %w", version, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
