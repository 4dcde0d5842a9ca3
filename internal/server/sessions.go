package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
)

func parseID(c *gin.Context, name string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%w: malformed %s", ErrInvalidRequest, name)
	}
	return id, nil
}

func (s *Server) CreateSession(c *gin.Context) {
	var req sessiondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	sess, err := s.sessionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sess)
}

func (s *Server) ListSessions(c *gin.Context) {
	filter := sessiondomain.ListFilter{
		MentorID: c.Query("mentor_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, sessiondomain.Status(v))
		}
	}

	sessions, err := s.sessionSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

func (s *Server) GetSession(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sess, err := s.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (s *Server) DeleteSession(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.sessionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
