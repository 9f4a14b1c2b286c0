package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Document is one record of a collection, keyed by its opaque id.
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// Store is the small capability set the backfill needs from a document database.
type Store interface {
	ListAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection string, id string) (Document, bool, error)
	// UpdateFields merges fields into the document, leaving other fields untouched.
	UpdateFields(ctx context.Context, collection string, id string, fields map[string]interface{}) error
	Close() error
}

func (d Document) Has(key string) bool {
	_, ok := d.Fields[key]
	return ok
}

// String returns the field as a string, empty if absent or not a string.
func (d Document) String(key string) string {
	v, ok := d.Fields[key].(string)
	if !ok {
		return ""
	}
	return v
}
