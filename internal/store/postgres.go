package store

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// query helpers serve both the pool-backed store and its transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store on an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates all store tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// FindOne implements Store.
func (p *Postgres) FindOne(ctx context.Context, kind Kind, conds ...Cond) (*Record, error) {
	return findOne(ctx, p.pool, kind, conds)
}

// Create implements Store.
func (p *Postgres) Create(ctx context.Context, kind Kind, fields Fields) (int64, error) {
	return create(ctx, p.pool, kind, fields)
}

// Update implements Store.
func (p *Postgres) Update(ctx context.Context, kind Kind, id int64, fields Fields) error {
	return update(ctx, p.pool, kind, id, fields)
}

// Begin implements Beginner. The returned TxStore maps directly onto a
// Postgres transaction, so Commit/Rollback give the batch its
// all-or-nothing guarantee.
func (p *Postgres) Begin(ctx context.Context) (TxStore, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) FindOne(ctx context.Context, kind Kind, conds ...Cond) (*Record, error) {
	return findOne(ctx, t.tx, kind, conds)
}

func (t *pgTx) Create(ctx context.Context, kind Kind, fields Fields) (int64, error) {
	return create(ctx, t.tx, kind, fields)
}

func (t *pgTx) Update(ctx context.Context, kind Kind, id int64, fields Fields) error {
	return update(ctx, t.tx, kind, id, fields)
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}

func findOne(ctx context.Context, db DBTX, kind Kind, conds []Cond) (*Record, error) {
	var (
		where strings.Builder
		args  []any
	)
	for i, c := range conds {
		if i == 0 {
			where.WriteString(" WHERE ")
		} else {
			where.WriteString(" AND ")
		}
		fmt.Fprintf(&where, "%s = $%d", quoteIdentifier(c.Field), i+1)
		args = append(args, toPgValue(c.Value))
	}

	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY id LIMIT 1",
		quoteIdentifier(string(kind)), where.String())

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("find %s: %w", kind, err)
		}
		return nil, nil
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}

	rec := &Record{Kind: kind, Fields: make(Fields, len(values))}
	for i, fd := range rows.FieldDescriptions() {
		if fd.Name == "id" {
			rec.ID = toInt64(values[i])
			continue
		}
		rec.Fields[fd.Name] = fromPgValue(values[i])
	}
	return rec, nil
}

func create(ctx context.Context, db DBTX, kind Kind, fields Fields) (int64, error) {
	cols := sortedKeys(fields)

	var (
		colList []string
		phList  []string
		args    []any
	)
	for i, col := range cols {
		colList = append(colList, quoteIdentifier(col))
		phList = append(phList, fmt.Sprintf("$%d", i+1))
		args = append(args, toPgValue(fields[col]))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quoteIdentifier(string(kind)),
		strings.Join(colList, ", "),
		strings.Join(phList, ", "))

	var id int64
	if err := db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create %s: %w", kind, err)
	}
	return id, nil
}

func update(ctx context.Context, db DBTX, kind Kind, id int64, fields Fields) error {
	cols := sortedKeys(fields)

	var (
		sets []string
		args []any
	)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdentifier(col), i+1))
		args = append(args, toPgValue(fields[col]))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		quoteIdentifier(string(kind)),
		strings.Join(sets, ", "),
		len(args))

	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	return nil
}

// quoteIdentifier safely quotes a SQL identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toPgValue maps field values to driver values. Timestamps go through
// pgtype.Timestamp so they stay naive (no timezone) in the database.
func toPgValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return pgtype.Timestamp{Time: t, Valid: true}
	default:
		return v
	}
}

func fromPgValue(v any) any {
	switch t := v.(type) {
	case pgtype.Timestamp:
		if !t.Valid {
			return nil
		}
		return t.Time
	case int32:
		return int64(t)
	default:
		return v
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	default:
		return 0
	}
}
