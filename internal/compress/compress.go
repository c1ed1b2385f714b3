// Package compress rewrites stored artifacts into smaller lossy forms.
package compress

import (
	"context"
	"fmt"
)

// PDFCompressor rewrites the PDF at path and returns the compressed bytes.
// The input file is left untouched.
type PDFCompressor interface {
	CompressPDF(ctx context.Context, path string) ([]byte, error)
}

// ImageCompressor fits an image inside maxWidth x maxHeight and re-encodes it
// as JPEG at the given quality (1-100).
type ImageCompressor interface {
	CompressImage(ctx context.Context, data []byte, maxWidth, maxHeight, quality int) ([]byte, error)
}

// ToolError reports a non-zero exit or failed launch of an external tool.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ImageDecodeError reports bytes that no registered image decoder accepts.
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }
