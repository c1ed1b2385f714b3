// Package ocr turns raster images into recognized text and a searchable PDF.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"
)

// TextRecognizer runs a plain-text recognition pass over an encoded image.
// Implementations must use a fresh engine instance per call.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// PDFRenderer renders the image at imagePath into a searchable PDF written to
// outputBase + ".pdf". Implementations must use a fresh engine instance per call.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, imagePath, outputBase string) error
}

// Result is the outcome of one Recognize call.
type Result struct {
	Text       string
	PDF        []byte
	ChosenName string
}

// EngineError wraps a failure of the recognition engine or its PDF sink.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Adapter coordinates the two recognition passes and owns their scratch files.
type Adapter struct {
	Text    TextRecognizer
	PDF     PDFRenderer
	TempDir string

	sem *semaphore.Weighted
}

// NewAdapter constructs an Adapter. maxConcurrent bounds how many Recognize
// calls run engines at once; zero or less means unbounded.
func NewAdapter(text TextRecognizer, pdf PDFRenderer, tempDir string, maxConcurrent int) *Adapter {
	a := &Adapter{Text: text, PDF: pdf, TempDir: tempDir}
	if maxConcurrent > 0 {
		a.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return a
}

// Recognize returns the recognized text, a searchable PDF of the image, and
// suggestedName with its extension stripped.
func (a *Adapter) Recognize(ctx context.Context, image []byte, suggestedName string) (Result, error) {
	if len(image) == 0 {
		return Result{}, &EngineError{Op: "input", Err: fmt.Errorf("empty image")}
	}
	if a.sem != nil {
		if err := a.sem.Acquire(ctx, 1); err != nil {
			return Result{}, err
		}
		defer a.sem.Release(1)
	}

	text, err := a.Text.RecognizeText(ctx, image)
	if err != nil {
		return Result{}, &EngineError{Op: "recognize", Err: err}
	}

	pdf, err := a.renderPDF(ctx, image)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text:       text,
		PDF:        pdf,
		ChosenName: StripExtension(suggestedName),
	}, nil
}

func (a *Adapter) renderPDF(ctx context.Context, image []byte) ([]byte, error) {
	dir, err := os.MkdirTemp(a.TempDir, "ocr-*")
	if err != nil {
		return nil, &EngineError{Op: "render", Err: fmt.Errorf("scratch dir: %w", err)}
	}
	defer os.RemoveAll(dir)

	imagePath := filepath.Join(dir, "input")
	if err := os.WriteFile(imagePath, image, 0o600); err != nil {
		return nil, &EngineError{Op: "render", Err: fmt.Errorf("write input: %w", err)}
	}

	outputBase := filepath.Join(dir, "output")
	if err := a.PDF.RenderPDF(ctx, imagePath, outputBase); err != nil {
		return nil, &EngineError{Op: "render", Err: err}
	}

	pdf, err := os.ReadFile(outputBase + ".pdf")
	if err != nil {
		return nil, &EngineError{Op: "render", Err: fmt.Errorf("read output: %w", err)}
	}
	if len(pdf) == 0 {
		return nil, &EngineError{Op: "render", Err: fmt.Errorf("empty output")}
	}
	return pdf, nil
}

// StripExtension drops the final extension from a file name. No extension is
// appended back.
func StripExtension(name string) string {
	base := strings.TrimSpace(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
