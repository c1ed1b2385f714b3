package documents

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Service exposes read access to persisted documents.
type Service struct {
	Repo DocumentsRepo
}

// Get returns metadata, extracted text and binary for id.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if !validID(id) {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetDocument(ctx, id)
}

// File returns the stored artifact for id.
func (s *Service) File(ctx context.Context, id string) (Binary, error) {
	if !validID(id) {
		return Binary{}, ErrNotFound
	}
	return s.Repo.GetBinary(ctx, id)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Search lists documents whose file name or extracted text contains query.
// An empty query lists everything. A non-positive limit means
// DefaultPageSize; larger limits are capped at MaxPageSize.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]Document, error) {
	if len(query) > 256 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, strings.TrimSpace(query), limit, offset)
}

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}
