package documents

import "time"

// Metadata describes a persisted document. SizeBytes always equals the length
// of the stored binary, which is the post-compression artifact.
type Metadata struct {
	ID          string
	FileName    string
	ContentType string
	SizeBytes   int64
	FilePath    string
	UploadedAt  time.Time
}

// Document is the metadata, extracted text and stored binary of one upload.
// List results leave Data nil.
type Document struct {
	Metadata
	ExtractedText string
	Data          []byte
}

// Binary is the stored artifact plus what is needed to serve it back.
type Binary struct {
	ContentType string
	FileName    string
	Data        []byte
}
