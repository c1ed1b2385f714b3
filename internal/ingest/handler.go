package ingest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"docarchive/internal/documents"
	"docarchive/internal/shared/server/respond"
	"docarchive/internal/shared/storage/object"
)

const defaultMaxUploadBytes = 20 << 20

// Handler exposes ingestion over HTTP.
type Handler struct {
	Svc            *Service
	Objects        object.ObjectStore
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. objects may be nil, in which case the
// from-object route is not registered.
func NewHandler(svc *Service, objects object.ObjectStore, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Objects: objects, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches ingestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	if h.Objects != nil {
		rg.POST("/documents/from-object", h.fromObject)
	}
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	h.ingest(c, Upload{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
		FileName:    fileHeader.Filename,
	})
}

type fromObjectRequest struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (h *Handler) fromObject(c *gin.Context) {
	var req fromObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "key is required", nil)
		return
	}
	if _, err := ParseKind(req.ContentType); err != nil {
		writeIngestError(c, err)
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		req.FileName = path.Base(req.Key)
	}

	rc, err := h.Objects.Open(c.Request.Context(), req.Key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "object not found", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "object_store_error", "failed to fetch object", nil)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, h.MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "object_store_error", "failed to read object", nil)
		return
	}
	if int64(len(data)) > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "object exceeds upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
		return
	}

	h.ingest(c, Upload{Data: data, ContentType: req.ContentType, FileName: req.FileName})
}

func (h *Handler) ingest(c *gin.Context, up Upload) {
	if kind, err := ParseKind(up.ContentType); err == nil {
		c.Set("documentKind", string(kind))
	}

	doc, err := h.Svc.Ingest(c.Request.Context(), up)
	if err != nil {
		writeIngestError(c, err)
		return
	}

	c.Set("documentId", doc.ID)
	location := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.FullPath(), "/from-object"), doc.ID)
	respond.Created(c, location, documents.ToResponse(doc, true))
}

func writeIngestError(c *gin.Context, err error) {
	var validationErr *ValidationError
	switch Outcome(err) {
	case "invalid":
		msg := "invalid upload"
		if errors.As(err, &validationErr) {
			msg = validationErr.Error()
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
	case "unprocessable":
		respond.Error(c, http.StatusUnprocessableEntity, "unprocessable_document", "document could not be parsed", nil)
	case "ocr_failed":
		respond.Error(c, http.StatusInternalServerError, "ocr_failed", "text recognition failed", nil)
	case "compression_failed":
		respond.Error(c, http.StatusInternalServerError, "compression_failed", "document compression failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest document", nil)
	}
}
