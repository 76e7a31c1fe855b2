package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline *usecase.Pipeline
}

// NewHandler creates a new HTTP handler
func NewHandler(pipeline *usecase.Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// lookupRequest is the body of a property lookup call
type lookupRequest struct {
	Inputs []string `json:"inputs" binding:"required,min=1"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "zillow-scrape",
	})
}

// LookupProperties runs a batch of raw inputs (address, ZPID, or listing URL)
// through the pipeline and returns one outcome per input, in input order
func (h *Handler) LookupProperties(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "request body must contain a non-empty 'inputs' array",
		})
		return
	}

	outcomes := h.pipeline.Run(c.Request.Context(), req.Inputs)

	c.JSON(http.StatusOK, gin.H{
		"outcomes": outcomes,
	})
}
