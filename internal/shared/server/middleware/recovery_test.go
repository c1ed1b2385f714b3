package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docarchive/internal/shared/telemetry"
)

func TestRecoveryWritesErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/documents/:id", func(c *gin.Context) {
		c.Set("documentId", "doc-7")
		panic("nil map write")
	})

	req := httptest.NewRequest(http.MethodGet, "/documents/doc-7", nil)
	req.Header.Set("X-Request-Id", "req-9")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Code != "internal_error" {
		t.Fatalf("unexpected error code %q", body.Error.Code)
	}

	var panicLine map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["msg"] == "http.panic" {
			panicLine = entry
		}
	}
	if panicLine == nil {
		t.Fatalf("expected http.panic log line in %q", buf.String())
	}
	if panicLine["request_id"] != "req-9" || panicLine["document_id"] != "doc-7" || panicLine["route"] != "/documents/:id" {
		t.Fatalf("unexpected panic fields: %v", panicLine)
	}
	if panicLine["error"] != "nil map write" {
		t.Fatalf("unexpected error field %v", panicLine["error"])
	}
}
