// claude.go streams one claude execution back to the caller as
// newline-delimited JSON events.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coderelay-dev/coderelay/internal/execute"
	"github.com/coderelay-dev/coderelay/internal/session"
)

// claudeRequest is the inbound execution request. Field names match the
// wire contract of the wrapped tool's flags.
type claudeRequest struct {
	Prompt                     string   `json:"prompt"`
	SessionID                  string   `json:"session_id"`
	DangerouslySkipPermissions bool     `json:"dangerously-skip-permissions"`
	AllowedTools               []string `json:"allowedTools"`
	DisallowedTools            []string `json:"disallowedTools"`
}

func (s *Server) handleClaude(c *gin.Context) {
	var req claudeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	// Headers go out lazily: client errors detected before the first event
	// (unknown session, busy session, spawn failure) still get a JSON
	// status response instead of a broken stream.
	streaming := false
	w := c.Writer
	writeLine := func(line []byte) error {
		if !streaming {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			streaming = true
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	res, err := s.runner.Run(c.Request.Context(), execute.Request{
		Prompt:                     req.Prompt,
		SessionID:                  req.SessionID,
		DangerouslySkipPermissions: req.DangerouslySkipPermissions,
		AllowedTools:               req.AllowedTools,
		DisallowedTools:            req.DisallowedTools,
	}, func(ev execute.Event) error {
		return writeLine(ev.Raw)
	})

	if err != nil {
		if !streaming {
			switch {
			case errors.Is(err, session.ErrUnknownSession):
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			case errors.Is(err, session.ErrSessionBusy):
				c.JSON(http.StatusConflict, gin.H{"error": "session is busy"})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": "claude execution failed"})
			}
			return
		}
		// The stream is already open; emit a terminal error event.
		line, _ := json.Marshal(gin.H{"type": "error", "error": "claude execution failed"})
		_ = writeLine(line)
		return
	}

	if !res.InitSeen {
		// The tool never announced a session id. Recoverable: the caller
		// got every event, but the session cannot be resumed.
		line, _ := json.Marshal(gin.H{"type": "warning", "warning": "no session id announced; session cannot be resumed"})
		_ = writeLine(line)
	}
}
