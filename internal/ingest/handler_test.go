package ingest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docarchive/internal/compress"
	"docarchive/internal/documents"
	"docarchive/internal/extract"
	"docarchive/internal/ingest"
	"docarchive/internal/ocr"
	"docarchive/internal/shared/storage/disk"
	"docarchive/internal/shared/storage/object"
	"docarchive/internal/testutil"
)

type stubCompressor struct {
	err error
}

func (s stubCompressor) CompressPDF(ctx context.Context, path string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return append([]byte("gs:"), data[:8]...), nil
}

type stubRecognizer struct{}

func (stubRecognizer) Recognize(ctx context.Context, image []byte, suggestedName string) (ocr.Result, error) {
	return ocr.Result{Text: "recognized", PDF: []byte("%PDF"), ChosenName: ocr.StripExtension(suggestedName)}, nil
}

type memObjects map[string][]byte

func (m memObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m memObjects) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

type harness struct {
	router *gin.Engine
	svc    *ingest.Service
	repo   *documents.MemoryRepo
}

func newHarness(t *testing.T, objects object.ObjectStore) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := documents.NewMemoryRepo()
	svc := &ingest.Service{
		Files:     disk.New(t.TempDir()),
		Extractor: extract.Extractor{},
		OCR:       stubRecognizer{},
		PDF:       stubCompressor{},
		Images:    compress.Raster{},
		Repo:      repo,
	}

	router := gin.New()
	api := router.Group("/api/v1")
	ingest.NewHandler(svc, objects, 1<<20).RegisterRoutes(api)
	documents.NewHandler(&documents.Service{Repo: repo}).RegisterRoutes(api)
	return &harness{router: router, svc: svc, repo: repo}
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestUploadPDFThenDownload(t *testing.T) {
	h := newHarness(t, nil)
	pdf := testutil.MinimalPDF("Hello", "World")

	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, multipartUpload(t, "report.pdf", "application/pdf", pdf))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created documents.DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.DocumentID == "" || created.FileName != "report.pdf" {
		t.Fatalf("unexpected response: %+v", created)
	}
	if created.ExtractedText == nil || !strings.Contains(*created.ExtractedText, "Page 2:") || !strings.Contains(*created.ExtractedText, "World") {
		t.Fatalf("unexpected extracted text: %v", created.ExtractedText)
	}
	if loc := resp.Header().Get("Location"); loc != "/api/v1/documents/"+created.DocumentID {
		t.Fatalf("unexpected Location %q", loc)
	}

	fileResp := httptest.NewRecorder()
	h.router.ServeHTTP(fileResp, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID+"/file", nil))

	if fileResp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", fileResp.Code)
	}
	if got := fileResp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	want := append([]byte("gs:"), pdf[:8]...)
	if !bytes.Equal(fileResp.Body.Bytes(), want) {
		t.Fatalf("expected compressed artifact, got %q", fileResp.Body.Bytes())
	}
	if created.SizeBytes != int64(len(want)) {
		t.Fatalf("size %d != stored length %d", created.SizeBytes, len(want))
	}
}

func TestUploadImageUsesRecognizedName(t *testing.T) {
	h := newHarness(t, nil)

	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, multipartUpload(t, "receipt.jpg", "image/jpeg", testutil.JPEG(80, 60, "hi")))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created documents.DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.FileName != "receipt" || created.ContentType != "image/jpeg" {
		t.Fatalf("unexpected response: %+v", created)
	}
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        []byte
		pdfErr      error
		wantStatus  int
		wantCode    string
	}{
		{name: "unsupported type", fileName: "notes.txt", contentType: "text/plain", data: []byte("hi"), wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "empty file", fileName: "a.pdf", contentType: "application/pdf", data: nil, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "corrupt pdf", fileName: "a.pdf", contentType: "application/pdf", data: []byte("garbage"), wantStatus: http.StatusUnprocessableEntity, wantCode: "unprocessable_document"},
		{name: "bad jpeg", fileName: "a.jpg", contentType: "image/jpeg", data: []byte("garbage"), wantStatus: http.StatusUnprocessableEntity, wantCode: "unprocessable_document"},
		{
			name:        "compression failure",
			fileName:    "a.pdf",
			contentType: "application/pdf",
			data:        testutil.MinimalPDF("x"),
			pdfErr:      &compress.ToolError{Tool: "gs", ExitCode: 1, Stderr: "boom"},
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "compression_failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			if tt.pdfErr != nil {
				h.svc.PDF = stubCompressor{err: tt.pdfErr}
			}

			resp := httptest.NewRecorder()
			h.router.ServeHTTP(resp, multipartUpload(t, tt.fileName, tt.contentType, tt.data))

			if resp.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			if code := errorCode(t, resp); code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, code)
			}
			docs, err := h.repo.List(context.Background(), "", 0, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(docs) != 0 {
				t.Fatalf("expected nothing persisted, got %d documents", len(docs))
			}
		})
	}
}

func TestUploadMissingFileField(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestIngestFromObject(t *testing.T) {
	objects := memObjects{"inbox/invoice.pdf": testutil.MinimalPDF("Invoice 42")}
	h := newHarness(t, objects)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/from-object", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		h.router.ServeHTTP(resp, req)
		return resp
	}

	resp := post(`{"key":"inbox/invoice.pdf","contentType":"application/pdf"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created documents.DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.FileName != "invoice.pdf" {
		t.Fatalf("expected file name from key, got %q", created.FileName)
	}
	if created.ExtractedText == nil || !strings.Contains(*created.ExtractedText, "Invoice 42") {
		t.Fatalf("unexpected extracted text: %v", created.ExtractedText)
	}

	if resp := post(`{"key":"inbox/missing.pdf","contentType":"application/pdf"}`); resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	if resp := post(`{"key":"inbox/invoice.pdf","contentType":"image/png"}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if resp := post(`{"contentType":"application/pdf"}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestIngestFromObjectTooLarge(t *testing.T) {
	objects := memObjects{"big.pdf": bytes.Repeat([]byte("a"), (1<<20)+1)}
	h := newHarness(t, objects)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/from-object", strings.NewReader(`{"key":"big.pdf","contentType":"application/pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", resp.Code)
	}
}
