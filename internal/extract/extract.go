package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docarchive/internal/shared/util"
)

// Page is the text layer of a single PDF page. Number starts at 1.
type Page struct {
	Number int
	Text   string
}

// CorruptDocumentError reports a byte stream that cannot be read as a PDF.
type CorruptDocumentError struct {
	Page int
	Err  error
}

func (e *CorruptDocumentError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("corrupt pdf: page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("corrupt pdf: %v", e.Err)
}

func (e *CorruptDocumentError) Unwrap() error { return e.Err }

// Extractor satisfies the ingestion pipeline's text extraction dependency.
type Extractor struct{}

// ExtractText implements the pipeline interface.
func (Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return ExtractText(ctx, data)
}

// ExtractText returns the text layer of every page, in order, each one
// rendered as "Page N:\n<text>\n\n". A PDF without any text still yields one
// header per page.
func ExtractText(ctx context.Context, data []byte) (string, error) {
	pages, err := ExtractPages(ctx, data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "Page %d:\n%s\n\n", p.Number, p.Text)
	}
	return b.String(), nil
}

// ExtractPages parses the PDF and returns per-page text.
// Library used: github.com/ledongthuc/pdf.
func ExtractPages(ctx context.Context, data []byte) (pages []Page, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &CorruptDocumentError{Err: fmt.Errorf("empty input")}
	}

	// The parser panics on some malformed object graphs.
	current := 0
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = &CorruptDocumentError{Page: current, Err: fmt.Errorf("parser panic: %v", rec)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &CorruptDocumentError{Err: err}
	}

	total := reader.NumPage()
	pages = make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current = i
		page := reader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &CorruptDocumentError{Page: i, Err: err}
		}
		// Fonts without a ToUnicode map can yield raw glyph codes, NULs included.
		pages = append(pages, Page{Number: i, Text: util.StorableText(text)})
	}
	return pages, nil
}
