package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/notekeeper/internal/notes"
	"github.com/at-ishikawa/notekeeper/internal/record"
)

func (s *Server) createRecord(c *gin.Context) {
	var in notes.RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	r, err := s.records.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) editRecord(c *gin.Context) {
	var in notes.RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	r, err := s.records.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record updated successfully", "record": r})
}

func (s *Server) getRecord(c *gin.Context) {
	r, err := s.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": r})
}

func (s *Server) deleteRecord(c *gin.Context) {
	r, err := s.records.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Record deleted successfully",
		"deletedRecord": gin.H{"_id": r.ID, "title": r.Title},
	})
}

// listQuery reads the listing parameters. Malformed numbers fall back to the defaults.
func listQuery(c *gin.Context) record.ListQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return record.ListQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category"),
		FolderID:   c.Query("folder"),
		SortBy:     c.Query("sortBy"),
		Ascending:  c.Query("sortOrder") == "asc",
		Page:       page,
		Limit:      limit,
	}
}

func (s *Server) listRecords(c *gin.Context) {
	records, pagination, err := s.records.List(c.Request.Context(), listQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"records":    records,
		"pagination": pagination,
	})
}

func (s *Server) recordCategories(c *gin.Context) {
	categories, err := s.records.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func writeRecords(c *gin.Context, records []record.Record, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) allRecords(c *gin.Context) {
	records, err := s.records.All(c.Request.Context())
	writeRecords(c, records, err)
}

func (s *Server) recordsByDay(c *gin.Context) {
	p, ok := intParams(c, "year", "month", "day")
	if !ok {
		badRequest(c, "Year, month and day must be numbers")
		return
	}
	records, err := s.records.ByDay(c.Request.Context(), p[0], p[1], p[2])
	writeRecords(c, records, err)
}

func (s *Server) recordsByWeek(c *gin.Context) {
	p, ok := intParams(c, "year", "week")
	if !ok {
		badRequest(c, "Year and week must be numbers")
		return
	}
	records, err := s.records.ByWeek(c.Request.Context(), p[0], p[1])
	writeRecords(c, records, err)
}

func (s *Server) recordsByMonth(c *gin.Context) {
	p, ok := intParams(c, "year", "month")
	if !ok {
		badRequest(c, "Year and month must be numbers")
		return
	}
	records, err := s.records.ByMonth(c.Request.Context(), p[0], p[1])
	writeRecords(c, records, err)
}

func (s *Server) uploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Image file is required")
		return
	}
	file, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	r, err := s.records.SetImage(c.Request.Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), file, fh.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": r})
}
