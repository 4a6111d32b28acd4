package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/service"
)

// TestMatchRequest represents a dry-run match request
type TestMatchRequest struct {
	Text string `json:"text" binding:"required"`
}

// HandleGetQAConfig handles GET /v1/admin/qa/config
func HandleGetQAConfig(settings *service.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, settings.Snapshot())
	}
}

// HandleUpdateQAConfig handles PUT /v1/admin/qa/config
func HandleUpdateQAConfig(settings *service.Settings, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch service.SettingsPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		updated, err := settings.Update(patch)
		if err != nil {
			respondError(c, err, logger, "update Q&A settings")
			return
		}

		logger.Info("Q&A settings updated", zap.Bool("enabled", updated.Enabled))
		c.JSON(http.StatusOK, updated)
	}
}

// HandleListQuestions handles GET /v1/admin/qa/questions
func HandleListQuestions(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

		list, err := questions.List(c.Request.Context(), includeInactive)
		if err != nil {
			respondError(c, err, logger, "list questions")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"questions": list,
			"count":     len(list),
		})
	}
}

// HandleGetQuestion handles GET /v1/admin/qa/questions/:id
func HandleGetQuestion(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := questionID(c)
		if !ok {
			return
		}

		q, err := questions.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger, "get question")
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// HandleCreateQuestion handles POST /v1/admin/qa/questions
func HandleCreateQuestion(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.QuestionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		q, err := questions.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger, "create question")
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

// HandleUpdateQuestion handles PUT /v1/admin/qa/questions/:id
func HandleUpdateQuestion(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := questionID(c)
		if !ok {
			return
		}

		var patch service.QuestionPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		q, err := questions.Update(c.Request.Context(), id, patch)
		if err != nil {
			respondError(c, err, logger, "update question")
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// HandleDeleteQuestion handles DELETE /v1/admin/qa/questions/:id.
// Questions are deactivated, never removed.
func HandleDeleteQuestion(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := questionID(c)
		if !ok {
			return
		}

		q, err := questions.Remove(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger, "remove question")
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// HandleQuestionStats handles GET /v1/admin/qa/stats
func HandleQuestionStats(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := questions.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err, logger, "compute question stats")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// HandleTestMatch handles POST /v1/admin/qa/test
func HandleTestMatch(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TestMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		result, err := questions.Test(c.Request.Context(), req.Text)
		if err != nil {
			respondError(c, err, logger, "test match")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleListAllMedia handles GET /v1/admin/qa/media
func HandleListAllMedia(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := questions.ListAllMedia()
		if err != nil {
			respondError(c, err, logger, "list media")
			return
		}
		c.JSON(http.StatusOK, gin.H{"media": files})
	}
}

// HandleListMedia handles GET /v1/admin/qa/media/:kind
func HandleListMedia(questions service.QuestionService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := domain.ParseResponseKind(c.Param("kind"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media kind"})
			return
		}

		files, err := questions.ListMedia(kind)
		if err != nil {
			respondError(c, err, logger, "list media")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"kind":  kind,
			"files": files,
			"count": len(files),
		})
	}
}

func questionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question ID"})
		return uuid.Nil, false
	}
	return id, true
}
