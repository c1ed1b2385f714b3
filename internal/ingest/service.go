// Package ingest turns an uploaded PDF or JPEG into a persisted document:
// text extraction, recompression and one atomic save of metadata, text and
// binary.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docarchive/internal/compress"
	"docarchive/internal/documents"
	"docarchive/internal/extract"
	"docarchive/internal/ocr"
	"docarchive/internal/shared/metrics"
	"docarchive/internal/shared/telemetry"
	"docarchive/internal/shared/util"
)

// FileStore holds the on-disk copy of each upload.
type FileStore interface {
	Allocate(fileName string) (string, error)
	Write(ctx context.Context, path string, data []byte) error
	Remove(path string) error
}

// TextExtractor reads the text layer of a PDF.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Recognizer runs OCR over an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, suggestedName string) (ocr.Result, error)
}

// ImageOptions bounds the stored raster.
type ImageOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// DefaultImageOptions are used when Service.Image is left zero.
var DefaultImageOptions = ImageOptions{MaxWidth: 600, MaxHeight: 800, Quality: 50}

// Upload is one incoming document.
type Upload struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Service orchestrates ingestion.
type Service struct {
	Files     FileStore
	Extractor TextExtractor
	OCR       Recognizer
	PDF       compress.PDFCompressor
	Images    compress.ImageCompressor
	Repo      documents.DocumentsRepo
	Image     ImageOptions
	Now       func() time.Time
}

type artifact struct {
	name string
	text string
	data []byte
}

// Ingest validates up, extracts its text, compresses it and persists the
// result. On any failure nothing is persisted and the on-disk copy is removed.
func (s *Service) Ingest(ctx context.Context, up Upload) (documents.Document, error) {
	start := time.Now()

	kind, mediaType, err := validate(up)
	if err != nil {
		metrics.ObserveIngest("unknown", "invalid", time.Since(start))
		return documents.Document{}, err
	}

	name := strings.TrimSpace(up.FileName)
	if name == "" {
		name = "upload"
	}

	path, err := s.Files.Allocate(name)
	if err != nil {
		return s.fail(kind, start, fmt.Errorf("allocate upload path: %w", err))
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := s.Files.Remove(path); err != nil {
			telemetry.Warn("ingest.cleanup_failed", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		}
	}()

	if err := s.Files.Write(ctx, path, up.Data); err != nil {
		return s.fail(kind, start, fmt.Errorf("write original: %w", err))
	}

	var art artifact
	switch kind {
	case KindPDF:
		art, err = s.processPDF(ctx, path, name, up.Data)
	case KindImage:
		art, err = s.processImage(ctx, name, up.Data)
	}
	if err != nil {
		return s.fail(kind, start, err)
	}

	if err := s.Files.Write(ctx, path, art.data); err != nil {
		return s.fail(kind, start, fmt.Errorf("write final artifact: %w", err))
	}

	meta := documents.Metadata{
		ID:          uuid.NewString(),
		FileName:    art.name,
		ContentType: mediaType,
		SizeBytes:   int64(len(art.data)),
		FilePath:    path,
		UploadedAt:  s.now(),
	}
	id, err := s.Repo.SaveDocument(ctx, meta, art.text, art.data)
	if err != nil {
		return s.fail(kind, start, fmt.Errorf("save document: %w", err))
	}
	meta.ID = id
	committed = true

	elapsed := time.Since(start)
	metrics.ObserveIngest(string(kind), "ok", elapsed)
	metrics.ObserveStoredBytes(string(kind), len(art.data))
	telemetry.Info("ingest.completed", map[string]any{
		"document_id":    id,
		"kind":           string(kind),
		"file_name":      art.name,
		"original_bytes": len(up.Data),
		"stored_bytes":   len(art.data),
		"sha256":         util.ContentDigest(art.data),
		"text_chars":     len(art.text),
		"duration_ms":    float64(elapsed.Microseconds()) / 1000.0,
	})

	return documents.Document{Metadata: meta, ExtractedText: art.text, Data: art.data}, nil
}

func (s *Service) processPDF(ctx context.Context, path, name string, data []byte) (artifact, error) {
	text, err := s.Extractor.ExtractText(ctx, data)
	if err != nil {
		return artifact{}, err
	}
	compressed, err := s.PDF.CompressPDF(ctx, path)
	if err != nil {
		return artifact{}, err
	}
	return artifact{name: name, text: text, data: compressed}, nil
}

// processImage runs OCR and raster compression over the original bytes in
// parallel. The stored artifact is the compressed raster; the OCR searchable
// PDF is dropped.
func (s *Service) processImage(ctx context.Context, name string, data []byte) (artifact, error) {
	opts := s.imageOptions()

	var (
		rec        ocr.Result
		compressed []byte
		imgErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = s.OCR.Recognize(gctx, data, name)
		return err
	})
	g.Go(func() error {
		compressed, imgErr = s.Images.CompressImage(gctx, data, opts.MaxWidth, opts.MaxHeight, opts.Quality)
		return imgErr
	})
	err := g.Wait()

	// An undecodable image is the caller's fault no matter which pass noticed first.
	var decodeErr *compress.ImageDecodeError
	if errors.As(imgErr, &decodeErr) {
		return artifact{}, imgErr
	}
	if err != nil {
		return artifact{}, err
	}

	telemetry.Debug("ingest.ocr_pdf_discarded", map[string]any{
		"file_name": rec.ChosenName,
		"pdf_bytes": len(rec.PDF),
	})
	return artifact{name: rec.ChosenName, text: rec.Text, data: compressed}, nil
}

func (s *Service) fail(kind Kind, start time.Time, err error) (documents.Document, error) {
	outcome := Outcome(err)
	metrics.ObserveIngest(string(kind), outcome, time.Since(start))
	telemetry.Error("ingest.failed", map[string]any{
		"kind":    string(kind),
		"outcome": outcome,
		"error":   err.Error(),
	})
	return documents.Document{}, err
}

func (s *Service) imageOptions() ImageOptions {
	opts := s.Image
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultImageOptions.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultImageOptions.MaxHeight
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultImageOptions.Quality
	}
	return opts
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validate(up Upload) (Kind, string, error) {
	if len(up.Data) == 0 {
		return "", "", &ValidationError{Field: "file", Reason: "is empty"}
	}
	kind, err := ParseKind(up.ContentType)
	if err != nil {
		return "", "", err
	}
	mediaType, _ := MediaType(up.ContentType)
	return kind, mediaType, nil
}

// Outcome classifies an ingestion error for metrics and HTTP mapping.
func Outcome(err error) string {
	var (
		validationErr *ValidationError
		corruptErr    *extract.CorruptDocumentError
		decodeErr     *compress.ImageDecodeError
		engineErr     *ocr.EngineError
		toolErr       *compress.ToolError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validationErr):
		return "invalid"
	case errors.As(err, &corruptErr), errors.As(err, &decodeErr):
		return "unprocessable"
	case errors.As(err, &engineErr):
		return "ocr_failed"
	case errors.As(err, &toolErr):
		return "compression_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
