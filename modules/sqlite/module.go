// Package sqlite provides the SQLiteLoader blocktype, which writes a table
// into a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/registry"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed manifest.jv
var manifest []byte

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the SQLiteLoader executor and its manifest.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("sqlite.jv", manifest)
	r.RegisterBlockExecutor("SQLiteLoader", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeTable, Out: iotype.TypeNone, Fn: load}
	})
}

func load(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	table := input.(*iotype.Table)

	name, err := ec.Text("table")
	if err != nil {
		return nil, err
	}
	file, err := ec.Text("file")
	if err != nil {
		return nil, err
	}
	drop, err := ec.Bool("dropTable")
	if err != nil {
		return nil, err
	}
	if len(table.Columns()) == 0 {
		return nil, fmt.Errorf("cannot load table '%s' without columns", name)
	}

	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := write(ctx, db, name, table, drop); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("💾 Loaded table into SQLite.", "table", name, "file", file, "rows", table.NumRows())
	return iotype.None, nil
}

// write runs all statements in one transaction.
func write(ctx context.Context, db *sql.DB, name string, table *iotype.Table, drop bool) (err error) {
	stmts := buildStatements(name, table)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if drop {
		if _, err := tx.ExecContext(ctx, stmts.Drop); err != nil {
			return fmt.Errorf("failed to drop table '%s': %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, stmts.Create); err != nil {
		return fmt.Errorf("failed to create table '%s': %w", name, err)
	}

	insert, err := tx.PrepareContext(ctx, stmts.Insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	cols := table.Columns()
	args := make([]any, len(cols))
	for row := 0; row < table.NumRows(); row++ {
		for c, col := range cols {
			args[c] = sqlValue(col.Values[row], col.Type)
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
