// Package uploads hands out presigned URLs so clients can put documents
// straight into the object store before asking for ingestion.
package uploads

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docarchive/internal/ingest"
	"docarchive/internal/shared/server/respond"
	"docarchive/internal/shared/storage/object"
	"docarchive/internal/shared/telemetry"
	"docarchive/internal/shared/util"
)

const (
	presignExpires       = 15 * time.Minute
	defaultUploadsPrefix = "incoming"
)

// Handler issues presigned PUT URLs.
type Handler struct {
	Store          object.ObjectStore
	MaxUploadBytes int64
	Prefix         string
	Expires        time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(store object.ObjectStore, maxUploadBytes int64) *Handler {
	return &Handler{
		Store:          store,
		MaxUploadBytes: maxUploadBytes,
		Prefix:         defaultUploadsPrefix,
		Expires:        presignExpires,
	}
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	Key              string `json:"key"`
	ContentType      string `json:"contentType"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// RegisterRoutes attaches the presign route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if _, err := ingest.ParseKind(req.ContentType); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", nil)
		return
	}
	mediaType, _ := ingest.MediaType(req.ContentType)
	if req.SizeBytes <= 0 || (h.MaxUploadBytes > 0 && req.SizeBytes > h.MaxUploadBytes) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", gin.H{"maxBytes": h.MaxUploadBytes})
		return
	}

	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	key := path.Join(h.Prefix, uuid.NewString()+"-"+sanitized)
	url, err := h.Store.PresignPut(c.Request.Context(), key, mediaType, h.Expires)
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"error":        err.Error(),
			"key":          key,
			"content_type": mediaType,
			"size_bytes":   req.SizeBytes,
			"request_id":   c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        url,
		Key:              key,
		ContentType:      mediaType,
		ExpiresInSeconds: int64(h.Expires.Seconds()),
	})
}
