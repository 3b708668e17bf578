package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/inference"
	"github.com/at-ishikawa/notekeeper/internal/logger"
	"github.com/at-ishikawa/notekeeper/internal/summary"
)

// ragRecord accepts both raw records and records with a populated category.
type ragRecord struct {
	Category json.RawMessage `json:"category"`
	Date     string          `json:"date"`
	DateInfo *struct {
		FullDate string `json:"fullDate"`
	} `json:"dateInfo"`
	CreatedAt string `json:"createdAt"`
}

func (r ragRecord) entry() summary.Entry {
	e := summary.Entry{}
	raw := bytes.TrimSpace(r.Category)
	switch {
	case len(raw) > 0 && raw[0] == '"':
		_ = json.Unmarshal(raw, &e.Category)
	case len(raw) > 0 && raw[0] == '{':
		var ref struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &ref); err == nil {
			e.Category = ref.Name
		}
	}

	switch {
	case r.Date != "":
		e.Date, _, _ = strings.Cut(r.Date, "T")
	case r.DateInfo != nil && r.DateInfo.FullDate != "":
		e.Date = r.DateInfo.FullDate
	case r.CreatedAt != "":
		e.Date, _, _ = strings.Cut(r.CreatedAt, "T")
	}
	return e
}

type ragSummaryRequest struct {
	Period  string      `json:"period"`
	Records []ragRecord `json:"records"`
}

type ragSummaryResponse struct {
	summary.Digest
	Narrative string `json:"narrative,omitempty"`
}

func (s *Server) ragSummary(c *gin.Context) {
	var req ragSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Period == "" || req.Records == nil {
		badRequest(c, "Invalid request body")
		return
	}

	entries := make([]summary.Entry, 0, len(req.Records))
	for _, r := range req.Records {
		entries = append(entries, r.entry())
	}
	resp := ragSummaryResponse{Digest: s.summaries.Digest(req.Period, entries)}

	if s.narrator != nil && resp.Details != nil && c.Query("narrate") == "true" {
		narrative, err := s.narrator.Narrate(c.Request.Context(), inference.NarrateRequest{
			Period: req.Period,
			Digest: resp.Digest,
		})
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("narration failed, returning the local summary", zap.Error(err))
		} else {
			resp.Narrative = narrative
		}
	}
	c.JSON(http.StatusOK, resp)
}
