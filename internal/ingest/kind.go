package ingest

import (
	"mime"
	"strings"
)

// Kind selects the extraction and compression path for an upload.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

var kindsByMediaType = map[string]Kind{
	"application/pdf": KindPDF,
	"image/jpeg":      KindImage,
	"image/jpg":       KindImage,
}

// ParseKind maps a declared content type to a Kind. Case and parameters are
// ignored; the file name plays no part.
func ParseKind(contentType string) (Kind, error) {
	mediaType, err := MediaType(contentType)
	if err != nil {
		return "", err
	}
	kind, ok := kindsByMediaType[mediaType]
	if !ok {
		return "", &ValidationError{Field: "contentType", Reason: "unsupported content type " + mediaType}
	}
	return kind, nil
}

// MediaType returns the lowercased media type of contentType without parameters.
func MediaType(contentType string) (string, error) {
	raw := strings.TrimSpace(contentType)
	if raw == "" {
		return "", &ValidationError{Field: "contentType", Reason: "is required"}
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return "", &ValidationError{Field: "contentType", Reason: "malformed", Err: err}
	}
	return strings.ToLower(mediaType), nil
}
