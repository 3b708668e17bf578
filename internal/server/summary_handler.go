package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/notekeeper/internal/summary"
)

// writeSummary responds with a null summary and a message when the period is empty.
func writeSummary[T any](c *gin.Context, s *T, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusOK, gin.H{"summary": nil, "message": summary.NoRecordsSummary})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": s})
}

func (s *Server) weeklySummary(c *gin.Context) {
	p, ok := intParams(c, "year", "week")
	if !ok {
		badRequest(c, "Year and week must be numbers")
		return
	}
	result, err := s.summaries.Weekly(c.Request.Context(), p[0], p[1])
	writeSummary(c, result, err)
}

func (s *Server) monthlySummary(c *gin.Context) {
	p, ok := intParams(c, "year", "month")
	if !ok {
		badRequest(c, "Year and month must be numbers")
		return
	}
	result, err := s.summaries.Monthly(c.Request.Context(), p[0], p[1])
	writeSummary(c, result, err)
}

func (s *Server) dailySummary(c *gin.Context) {
	p, ok := intParams(c, "year", "month", "day")
	if !ok {
		badRequest(c, "Year, month and day must be numbers")
		return
	}
	result, err := s.summaries.Daily(c.Request.Context(), p[0], p[1], p[2])
	writeSummary(c, result, err)
}
