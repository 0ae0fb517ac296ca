// Package storage provides the collection based document store used by the
// repositories. Documents are schemaless field maps; typing happens in the
// repository layer.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Collection names.
const (
	CollectionUsers       = "users"
	CollectionStartups    = "startups"
	CollectionRequests    = "investment_requests"
	CollectionInvestments = "investments"
	CollectionCredentials = "credentials"

	// CollectionLegacyStartups holds listings written with the older
	// startup_data schema. Only the migration command reads it.
	CollectionLegacyStartups = "startup_data"
)

// IDField addresses the document id in filters.
const IDField = "id"

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	// ErrEmptyIn is returned for an "in" filter without values.
	ErrEmptyIn = errors.New("in filter requires at least one value")
)

// Document is a stored record.
type Document struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Op is a filter operator.
type Op int

const (
	OpEq Op = iota
	OpIn
)

// Filter restricts Find results by a top level field.
type Filter struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

// Eq matches documents whose field equals value.
func Eq(field, value string) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// In matches documents whose field equals any of values.
func In(field string, values []string) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}

// Store is the document store capability.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Insert stores a new document under a generated id. CreatedAt and
	// UpdatedAt are stamped by the store.
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)
	// InsertWithID stores a new document under the given id and fails with
	// ErrAlreadyExists when it is taken.
	InsertWithID(ctx context.Context, collection, id string, fields map[string]any) error
	// Update merges fields into an existing document and stamps UpdatedAt.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
}

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if f.Field == "" {
			return fmt.Errorf("filter field is required")
		}
		if f.Op == OpIn && len(f.Values) == 0 {
			return fmt.Errorf("%s: %w", f.Field, ErrEmptyIn)
		}
	}
	return nil
}

// encodeFields normalises fields to their JSON representation.
func encodeFields(fields map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == IDField {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return raw, nil
}

func decodeFields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

// textValue mirrors how PostgreSQL renders a jsonb scalar with ->>.
func textValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
