// Package sqlite writes records into a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

func init() {
	output.Register(func(path string, opts output.Options) (output.Output, error) {
		return New(context.Background(), path, opts.TableName(), opts.Schema)
	}, ".db", ".sqlite", ".sqlite3")
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Output inserts records inside one transaction committed on Close.
// The table's previous contents are replaced.
type Output struct {
	mu     sync.Mutex
	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
	schema output.Schema
}

// New opens (or creates) the database at path and prepares table.
func New(ctx context.Context, path, table string, schema output.Schema) (*Output, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("sqlite output: invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite output: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite output: open %s: %w", path, err)
	}

	labelCol := `labels TEXT NOT NULL`
	if schema == output.SingleLabel {
		labelCol = `label INTEGER NOT NULL`
	}
	header := schema.Header()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite output: begin: %w", err)
	}
	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table),
		fmt.Sprintf(`CREATE TABLE %q (id TEXT PRIMARY KEY, text TEXT NOT NULL, %s)`, table, labelCol),
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			tx.Rollback()
			db.Close()
			return nil, fmt.Errorf("sqlite output: schema: %w", err)
		}
	}
	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s, %s, %s) VALUES (?, ?, ?)`, table, header[0], header[1], header[2]))
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("sqlite output: prepare: %w", err)
	}
	return &Output{db: db, tx: tx, insert: insert, schema: schema}, nil
}

func (o *Output) Write(ctx context.Context, rec model.LabeledRecord) error {
	values, err := o.schema.Values(rec)
	if err != nil {
		return fmt.Errorf("sqlite output: %w", err)
	}
	var labels any = values[2]
	if code, ok := rec.Label(); ok && o.schema == output.SingleLabel {
		labels = int(code)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.insert.ExecContext(ctx, rec.ID, rec.Text, labels); err != nil {
		return fmt.Errorf("sqlite output: insert %s: %w", rec.ID, err)
	}
	return nil
}

// Close commits the transaction and closes the database.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.db.Close()
	o.insert.Close()
	if err := o.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite output: commit: %w", err)
	}
	return nil
}
