package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/notekeeper/internal/notes"
)

func (s *Server) createFolder(c *gin.Context) {
	var in notes.FolderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	f, err := s.folders.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) editFolder(c *gin.Context) {
	var in notes.FolderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	f, err := s.folders.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Folder updated successfully", "folder": f})
}

func (s *Server) listFolders(c *gin.Context) {
	folders, err := s.folders.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (s *Server) getFolder(c *gin.Context) {
	f, err := s.folders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) deleteFolder(c *gin.Context) {
	f, err := s.folders.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted successfully", "id": f.ID})
}

type addRecordRequest struct {
	// RecordID is a record id or title.
	RecordID string `json:"recordId"`
	Title    string `json:"title"`
}

func (s *Server) addRecordToFolder(c *gin.Context) {
	var req addRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	ref := req.RecordID
	if ref == "" {
		ref = req.Title
	}
	f, err := s.folders.AddRecord(c.Request.Context(), c.Param("id"), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record Added Successfully", "folder": f})
}

func (s *Server) createRecordInFolder(c *gin.Context) {
	var in notes.RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	r, err := s.folders.CreateRecord(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Record created in folder", "record": r})
}

func (s *Server) removeRecordFromFolder(c *gin.Context) {
	f, err := s.folders.RemoveRecord(c.Request.Context(), c.Param("id"), c.Param("recordId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record removed from folder", "folder": f})
}
