package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
)

func (s *Server) GetTaxConfig(c *gin.Context) {
	cfg, err := s.taxSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (s *Server) UpdateTaxConfig(c *gin.Context) {
	var cfg taxdomain.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	updated, err := s.taxSvc.Update(c.Request.Context(), cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
