package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalflow/analytics/internal/apierror"
	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/models"
	"github.com/vitalflow/analytics/internal/service"
)

type RollupHandler struct {
	reporting service.ReportingService
	log       logger.Logger
}

// NewRollupHandler creates a new rollup read-path handler
func NewRollupHandler(reporting service.ReportingService, log logger.Logger) *RollupHandler {
	return &RollupHandler{
		reporting: reporting,
		log:       log,
	}
}

// GetRollup handles GET /api/v1/rollups/:username
func (h *RollupHandler) GetRollup(c *gin.Context) {
	username := c.Param("username")

	date := models.NormalizeDate(time.Now())
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse(models.DateLayout, dateStr)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewBadRequestError("invalid date format, want YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	rollup, err := h.reporting.GetRollup(c.Request.Context(), username, date)
	if err != nil {
		h.log.Error("failed to get rollup", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError())
		return
	}
	if rollup == nil {
		apierror.WriteProblem(c, apierror.NewNotFoundError("Daily rollup", username))
		return
	}

	c.JSON(http.StatusOK, rollup)
}

// GetRecentRollups handles GET /api/v1/rollups/:username/recent
func (h *RollupHandler) GetRecentRollups(c *gin.Context) {
	username := c.Param("username")

	since := models.NormalizeDate(time.Now()).AddDate(0, 0, -service.SummaryWindowDays)
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(models.DateLayout, sinceStr)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewBadRequestError("invalid since format, want YYYY-MM-DD"))
			return
		}
		since = parsed
	}

	rollups, err := h.reporting.GetRecentRollups(c.Request.Context(), username, since)
	if err != nil {
		h.log.Error("failed to get recent rollups", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError())
		return
	}
	if rollups == nil {
		rollups = []models.DailyRollup{}
	}

	c.JSON(http.StatusOK, rollups)
}

// GetLifetimeStats handles GET /api/v1/stats/:username
func (h *RollupHandler) GetLifetimeStats(c *gin.Context) {
	username := c.Param("username")

	stats, err := h.reporting.GetLifetimeStats(c.Request.Context(), username)
	if err != nil {
		h.log.Error("failed to get lifetime stats", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError())
		return
	}
	if stats == nil {
		apierror.WriteProblem(c, apierror.NewNotFoundError("Stats", username))
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSummary handles GET /api/v1/summary/:username
func (h *RollupHandler) GetSummary(c *gin.Context) {
	username := c.Param("username")

	summary, err := h.reporting.GetWeeklySummary(c.Request.Context(), username)
	if err != nil {
		h.log.Error("failed to build summary", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"summary":  summary,
	})
}
