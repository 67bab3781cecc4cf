package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Postgres implements Store over a single documents table with one JSONB
// field map per row. The (collection, key) pair is the primary key.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open sqlx connection as a document store.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Collection returns a handle for the named collection.
func (p *Postgres) Collection(name string) Collection {
	return &pgCollection{db: p.db, name: name}
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

type pgCollection struct {
	db   *sqlx.DB
	name string
}

type docRow struct {
	Key  string `db:"key"`
	Data []byte `db:"data"`
}

func (c *pgCollection) Stream(ctx context.Context) ([]Document, error) {
	var rows []docRow
	err := c.db.SelectContext(ctx, &rows,
		`SELECT key, data FROM documents WHERE collection = $1 ORDER BY key`, c.name)
	if err != nil {
		return nil, fmt.Errorf("store: stream %s: %w", c.name, err)
	}
	return decodeRows(c.name, rows)
}

func (c *pgCollection) Get(ctx context.Context, key string) (Document, bool, error) {
	var row docRow
	err := c.db.GetContext(ctx, &row,
		`SELECT key, data FROM documents WHERE collection = $1 AND key = $2`, c.name, key)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("store: get %s/%s: %w", c.name, key, err)
	}
	doc, err := decodeRow(c.name, row)
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

func (c *pgCollection) Set(ctx context.Context, key string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", c.name, key, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, key) DO UPDATE SET data = EXCLUDED.data`,
		c.name, key, raw)
	if err != nil {
		return fmt.Errorf("store: set %s/%s: %w", c.name, key, err)
	}
	return nil
}

func (c *pgCollection) Add(ctx context.Context, data map[string]any) (string, error) {
	key := uuid.NewString()
	if err := c.Set(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func (c *pgCollection) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND key = $2`, c.name, key)
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", c.name, key, err)
	}
	return nil
}

func (c *pgCollection) Query(ctx context.Context, field string, value any) ([]Document, error) {
	var rows []docRow
	err := c.db.SelectContext(ctx, &rows,
		`SELECT key, data FROM documents WHERE collection = $1 AND data->>$2 = $3`,
		c.name, field, textValue(value))
	if err != nil {
		return nil, fmt.Errorf("store: query %s.%s: %w", c.name, field, err)
	}
	return decodeRows(c.name, rows)
}

// textValue renders a query value the way JSONB ->> renders it, so equality
// comparisons match regardless of the Go type the caller passes.
func textValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func decodeRow(collection string, row docRow) (Document, error) {
	data := make(map[string]any)
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return Document{}, fmt.Errorf("store: decode %s/%s: %w", collection, row.Key, err)
		}
	}
	return Document{Key: row.Key, Data: data}, nil
}

func decodeRows(collection string, rows []docRow) ([]Document, error) {
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeRow(collection, row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
