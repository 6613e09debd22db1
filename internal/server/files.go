// files.go implements the OpenAI-style file endpoints on top of the stager.
package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coderelay-dev/coderelay/internal/files"
	"github.com/coderelay-dev/coderelay/internal/log"
)

// maxUploadBytes bounds a single staged file.
const maxUploadBytes = 64 << 20

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part is required"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	// Files belong to a session's workspace when session_id is given;
	// otherwise they get a fresh anonymous workspace.
	workspace := ""
	if key := c.PostForm("session_id"); key != "" {
		rec, err := s.store.Get(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		workspace, err = s.workspaces.Resolve(rec)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
	} else {
		workspace, err = s.workspaces.Create()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "allocating workspace failed"})
			return
		}
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading upload failed"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading upload failed"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rec, err := s.stager.Stage(workspace, data, header.Filename, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "staging file failed"})
		return
	}

	_ = s.logger.Emit(log.Event{Event: log.EventFileStaged, FileID: rec.ID, Workspace: workspace})
	c.JSON(http.StatusOK, files.ToDescriptor(rec, c.PostForm("purpose")))
}

func (s *Server) handleFileInfo(c *gin.Context) {
	rec, ok := s.stager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, files.ToDescriptor(rec, ""))
}

func (s *Server) handleFileContent(c *gin.Context) {
	id := c.Param("id")
	rec, ok := s.stager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	data, err := s.stager.ReadContent(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.Data(http.StatusOK, rec.ContentType, data)
}

func (s *Server) handleFileDelete(c *gin.Context) {
	id := c.Param("id")
	deleted := s.stager.Delete(id)
	if deleted {
		_ = s.logger.Emit(log.Event{Event: log.EventFileDeleted, FileID: id})
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "object": "file", "deleted": deleted})
}
