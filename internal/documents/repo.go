package documents

import "context"

// DocumentsRepo persists documents. SaveDocument stores the metadata,
// extracted text and binary together or not at all.
type DocumentsRepo interface {
	SaveDocument(ctx context.Context, meta Metadata, extractedText string, data []byte) (string, error)
	GetDocument(ctx context.Context, id string) (Document, error)
	GetBinary(ctx context.Context, id string) (Binary, error)
	List(ctx context.Context, query string, limit, offset int) ([]Document, error)
}
