package handlers

import (
	"errors"
	"net/http"

	"lexguard-backend/models"
	"lexguard-backend/repository"
	"lexguard-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisHandler handles HTTP requests for analyses
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	knowledgeRepo   *repository.KnowledgeRepository
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService, knowledgeRepo *repository.KnowledgeRepository, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{
		analysisService: analysisService,
		knowledgeRepo:   knowledgeRepo,
		logger:          logger,
	}
}

// CreateAnalysisRequest represents the request body for running an analysis.
// The knowledge base comes inline or by reference to an uploaded document;
// an inline knowledge base takes precedence.
type CreateAnalysisRequest struct {
	Query           string                `json:"query"`
	KnowledgeBase   *models.KnowledgeBase `json:"knowledgeBase"`
	KnowledgeBaseID string                `json:"knowledgeBaseId"`
	TargetNodeID    string                `json:"targetNodeId"`
	MaxIterations   int                   `json:"maxIterations"`
}

// CreateAnalysis handles POST /api/analyses
func (h *AnalysisHandler) CreateAnalysis(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Request-ID", requestID)

	var req CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	kb := req.KnowledgeBase
	if kb == nil && req.KnowledgeBaseID != "" {
		stored, _, err := h.knowledgeRepo.Get(c.Request.Context(), req.KnowledgeBaseID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "KNOWLEDGE_BASE_NOT_FOUND",
					"message": "No uploaded knowledge base with id " + req.KnowledgeBaseID,
				},
			})
			return
		}
		kb = stored
	}

	result, err := h.analysisService.Run(c.Request.Context(), service.AnalyzeRequest{
		Query:         req.Query,
		KnowledgeBase: kb,
		TargetNodeID:  req.TargetNodeID,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		status, code := analysisErrorStatus(err)
		h.logger.Warn("analysis request failed",
			zap.String("requestId", requestID),
			zap.String("code", code),
			zap.Error(err))
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	h.logger.Info("analysis request finished",
		zap.String("requestId", requestID),
		zap.String("status", string(result.Status)),
		zap.Int("iterations", result.Iterations))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"generatedText":     result.GeneratedText,
			"validationReport":  result.Report,
			"status":            result.Status,
			"authorizedContext": result.Context,
			"iterations":        result.Iterations,
		},
	})
}

// analysisErrorStatus maps a pipeline error to an HTTP status and error code.
// Input errors are 400s, missing coverage is a 422, and a completion
// transport failure surfaces as a 502.
func analysisErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return http.StatusBadRequest, "EMPTY_QUERY"
	case errors.Is(err, service.ErrEmptyKnowledgeBase):
		return http.StatusBadRequest, "EMPTY_KNOWLEDGE_BASE"
	case errors.Is(err, service.ErrTargetNodeNotFound):
		return http.StatusBadRequest, "TARGET_NODE_NOT_FOUND"
	case errors.Is(err, service.ErrBrokenTaxonomy):
		return http.StatusBadRequest, "BROKEN_TAXONOMY"
	case errors.Is(err, service.ErrEmptyAuthorization):
		return http.StatusUnprocessableEntity, "EMPTY_AUTHORIZATION"
	case errors.Is(err, service.ErrCompletionFailed):
		return http.StatusBadGateway, "COMPLETION_FAILED"
	default:
		return http.StatusInternalServerError, "ANALYSIS_FAILED"
	}
}
