package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalflow/analytics/internal/apierror"
	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/service"
	"github.com/vitalflow/analytics/internal/stream"
)

type EventHandler struct {
	applier service.Applier
	log     logger.Logger
}

// NewEventHandler creates the HTTP ingestion handler. This path mirrors
// what the worker does with queued events, for deployments without a
// broker in front of the engine.
func NewEventHandler(applier service.Applier, log logger.Logger) *EventHandler {
	return &EventHandler{
		applier: applier,
		log:     log,
	}
}

// Ingest handles POST /api/v1/events
func (h *EventHandler) Ingest(c *gin.Context) {
	var env stream.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError("invalid event payload"))
		return
	}

	event, err := stream.Decode(env, time.Now().UTC())
	if err != nil {
		if errors.Is(err, stream.ErrMissingTimestamp) {
			// Unlike the queue path, where these are dropped silently, a
			// synchronous caller gets told the event cannot be dated.
			apierror.WriteProblem(c, apierror.NewBadRequestError("update and delete events require a parsable timestamp"))
			return
		}
		apierror.WriteProblem(c, apierror.NewBadRequestError(err.Error()))
		return
	}

	insights, err := h.applier.Apply(c.Request.Context(), event)
	if err != nil {
		h.log.Error("failed to apply event",
			logger.String("kind", string(event.Kind)),
			logger.String("username", event.Username),
			logger.Err(err),
		)
		apierror.WriteProblem(c, apierror.NewInternalError())
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "applied",
		"insights": len(insights),
	})
}
