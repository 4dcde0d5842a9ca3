package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	req := auditdomain.ListRequest{
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
		TargetID:   c.Query("target_id"),
		ActorType:  c.Query("actor_type"),
	}

	if raw := c.Query("start_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: malformed start_at", ErrInvalidRequest))
			return
		}
		req.StartAt = &t
	}
	if raw := c.Query("end_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: malformed end_at", ErrInvalidRequest))
			return
		}
		req.EndAt = &t
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, fmt.Errorf("%w: malformed limit", ErrInvalidRequest))
			return
		}
		req.Limit = limit
	}

	logs, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
