// Package storage persists the document catalog the search index is built from.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/smartsearch/internal/models"
)

// ErrNotFound is returned when a document id is not in the catalog.
var ErrNotFound = errors.New("document not found")

// Storage defines document catalog operations.
type Storage interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	// UpsertDocument creates or replaces doc, keeping the original CreatedAt.
	UpsertDocument(ctx context.Context, doc *models.Document) error
	// DeleteDocument reports whether a document was removed.
	DeleteDocument(ctx context.Context, id string) (bool, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	// AllDocuments returns the whole catalog ordered by id.
	AllDocuments(ctx context.Context) ([]*models.Document, error)

	CountDocuments(ctx context.Context) (int64, error)
	CountByType(ctx context.Context) (map[models.DocumentType]int64, error)

	Close() error
}
