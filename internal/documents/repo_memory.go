package documents

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // id -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// SaveDocument stores all three parts under one lock.
func (r *MemoryRepo) SaveDocument(ctx context.Context, meta Metadata, extractedText string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	stored := make([]byte, len(data))
	copy(stored, data)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[meta.ID]; exists {
		return "", ErrInvalidInput
	}
	r.data[meta.ID] = Document{Metadata: meta, ExtractedText: extractedText, Data: stored}
	return meta.ID, nil
}

// GetDocument returns a document by ID.
func (r *MemoryRepo) GetDocument(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Data = append([]byte(nil), doc.Data...)
	return doc, nil
}

// GetBinary returns the stored artifact for a document.
func (r *MemoryRepo) GetBinary(ctx context.Context, id string) (Binary, error) {
	doc, err := r.GetDocument(ctx, id)
	if err != nil {
		return Binary{}, err
	}
	return Binary{ContentType: doc.ContentType, FileName: doc.FileName, Data: doc.Data}, nil
}

// List returns documents whose name or text contains query (case-insensitive),
// newest first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, query string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	docs := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if needle != "" &&
			!strings.Contains(strings.ToLower(doc.FileName), needle) &&
			!strings.Contains(strings.ToLower(doc.ExtractedText), needle) {
			continue
		}
		doc.Data = nil
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
