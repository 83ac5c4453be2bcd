package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lexguard-backend/models"
	"lexguard-backend/repository"
	"lexguard-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KnowledgeHandler handles HTTP requests for knowledge-base documents
type KnowledgeHandler struct {
	knowledgeRepo *repository.KnowledgeRepository
	storage       storage.Storage
	logger        *zap.Logger
	maxUploadSize int64
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledgeRepo *repository.KnowledgeRepository, store storage.Storage, logger *zap.Logger) *KnowledgeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeHandler{
		knowledgeRepo: knowledgeRepo,
		storage:       store,
		logger:        logger,
		maxUploadSize: 10 * 1024 * 1024, // 10MB
	}
}

// Upload handles POST /api/knowledge/upload. The uploaded document is parsed
// and validated before anything is written; the raw bytes are archived in
// storage and the parsed knowledge base registered under its content id.
func (h *KnowledgeHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No file provided in the 'file' form field",
			},
		})
		return
	}

	if fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds the %dMB limit", h.maxUploadSize/(1024*1024)),
			},
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" && strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".json") {
		mimeType = "application/json"
	}
	if mimeType != "application/json" && !strings.HasPrefix(mimeType, "text/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Knowledge bases must be uploaded as JSON documents",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": "Failed to open uploaded file",
			},
		})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": "Failed to read uploaded file",
			},
		})
		return
	}

	kb, err := models.ParseKnowledgeBase(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_KNOWLEDGE_BASE",
				"message": err.Error(),
			},
		})
		return
	}

	contentID := repository.ContentID(raw)
	storagePath, err := h.storage.Put(c.Request.Context(), contentID, bytes.NewReader(raw))
	if err != nil {
		h.logger.Error("failed to archive knowledge base", zap.String("id", contentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to archive the uploaded document",
			},
		})
		return
	}

	record, err := h.knowledgeRepo.Store(c.Request.Context(), raw, kb)
	if err != nil {
		// Clean up the archived document
		if delErr := h.storage.Delete(c.Request.Context(), storagePath); delErr != nil {
			h.logger.Error("failed to clean up archived document", zap.String("path", storagePath), zap.Error(delErr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REGISTRY_ERROR",
				"message": "Failed to register the knowledge base",
			},
		})
		return
	}

	h.logger.Info("knowledge base uploaded",
		zap.String("id", record.ID),
		zap.String("name", record.Name),
		zap.Int("items", record.Items),
		zap.Int("nodes", record.Nodes))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

// GetKnowledge handles GET /api/knowledge/:id
func (h *KnowledgeHandler) GetKnowledge(c *gin.Context) {
	id := c.Param("id")

	kb, record, err := h.knowledgeRepo.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "KNOWLEDGE_BASE_NOT_FOUND",
				"message": "No uploaded knowledge base with id " + id,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"record":        record,
			"knowledgeBase": kb,
		},
	})
}

// ListKnowledge handles GET /api/knowledge
func (h *KnowledgeHandler) ListKnowledge(c *gin.Context) {
	records := h.knowledgeRepo.List(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"records": records,
			"count":   len(records),
		},
	})
}

// DownloadDocument handles GET /api/knowledge/:id/document, streaming the
// archived raw upload back to the caller
func (h *KnowledgeHandler) DownloadDocument(c *gin.Context) {
	id := c.Param("id")

	_, record, err := h.knowledgeRepo.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "KNOWLEDGE_BASE_NOT_FOUND",
				"message": "No uploaded knowledge base with id " + id,
			},
		})
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), storage.PathFor(id))
	if err != nil {
		h.logger.Error("failed to read archived document", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": "Failed to read the archived document",
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".json"))
	c.DataFromReader(http.StatusOK, record.Size, "application/json", reader, nil)
}

// DeleteKnowledge handles DELETE /api/knowledge/:id
func (h *KnowledgeHandler) DeleteKnowledge(c *gin.Context) {
	id := c.Param("id")

	if err := h.knowledgeRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "KNOWLEDGE_BASE_NOT_FOUND",
				"message": "No uploaded knowledge base with id " + id,
			},
		})
		return
	}

	if err := h.storage.Delete(c.Request.Context(), storage.PathFor(id)); err != nil {
		h.logger.Warn("failed to delete archived document", zap.String("id", id), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":      id,
			"deleted": true,
		},
	})
}
