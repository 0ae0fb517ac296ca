package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"nexus/internal/infra"
	"nexus/internal/sqlinline"
)

// Postgres keeps every collection in a single jsonb documents table.
type Postgres struct {
	sql infra.SQLExecutor
}

// NewPostgres creates a Store backed by the given executor.
func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql}
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (*Document, error) {
	row := p.sql.QueryRow(ctx, sqlinline.QSelectDocument, collection, id)
	var (
		doc Document
		raw []byte
	)
	if err := row.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	doc.Fields = fields
	return &doc, nil
}

func (p *Postgres) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query, args, err := buildFindQuery(collection, filters)
	if err != nil {
		return nil, err
	}
	rows, err := p.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if doc.Fields, err = decodeFields(raw); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildFindQuery(collection string, filters []Filter) (string, []any, error) {
	if err := validateFilters(filters); err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString(sqlinline.QFindDocuments)
	args := []any{collection}
	for _, f := range filters {
		column := "data->>$" + strconv.Itoa(len(args)+1)
		if f.Field == IDField {
			column = "id"
		} else {
			args = append(args, f.Field)
		}
		switch f.Op {
		case OpEq:
			args = append(args, f.Value)
			fmt.Fprintf(&b, "\n  and %s = $%d", column, len(args))
		case OpIn:
			args = append(args, f.Values)
			fmt.Fprintf(&b, "\n  and %s = any($%d::text[])", column, len(args))
		default:
			return "", nil, fmt.Errorf("unsupported filter op %d", f.Op)
		}
	}
	b.WriteString("\norder by created_at;")
	return b.String(), args, nil
}

func (p *Postgres) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := p.InsertWithID(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) InsertWithID(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	var createdAt time.Time
	if err := p.sql.QueryRow(ctx, sqlinline.QInsertDocument, collection, id, raw).Scan(&createdAt); err != nil {
		if infra.IsNoRows(err) {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	tag, err := p.sql.Exec(ctx, sqlinline.QUpdateDocument, collection, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*Postgres)(nil)
