package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obsmetrics "github.com/smallbiznis/mensaplan/internal/observability/metrics"
)

type createImportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *Server) CreateImport(c *gin.Context) {
	var req createImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "start_date must be YYYY-MM-DD"))
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "end_date must be YYYY-MM-DD"))
		return
	}

	result, err := s.runner.Run(c.Request.Context(), obsmetrics.TriggerHTTP, start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
