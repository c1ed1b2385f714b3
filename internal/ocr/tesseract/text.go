// Package tesseract binds the OCR adapter to the Tesseract engine: gosseract
// for the text pass, the tesseract CLI for the searchable PDF pass.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

const defaultLanguage = "eng"

// TextRecognizer runs recognition in process through libtesseract.
type TextRecognizer struct {
	TessdataDir string
	Language    string

	clientFactory func() *gosseract.Client
}

// NewTextRecognizer constructs a recognizer. An empty tessdataDir uses the
// engine's built-in search path.
func NewTextRecognizer(tessdataDir, language string) *TextRecognizer {
	return &TextRecognizer{
		TessdataDir:   tessdataDir,
		Language:      language,
		clientFactory: gosseract.NewClient,
	}
}

// RecognizeText creates a client for this call only and closes it before
// returning.
func (r *TextRecognizer) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := r.clientFactory()
	defer c.Close()

	if r.TessdataDir != "" {
		if err := c.SetTessdataPrefix(r.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(r.language()); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *TextRecognizer) language() string {
	if strings.TrimSpace(r.Language) == "" {
		return defaultLanguage
	}
	return r.Language
}
