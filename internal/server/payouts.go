package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	payoutdomain "github.com/mentorpay/mentorpay/internal/payout/domain"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
)

func (s *Server) CreatePayoutRun(c *gin.Context) {
	run, err := s.payoutSvc.CreateRun(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, run)
}

func (s *Server) ListPayoutRuns(c *gin.Context) {
	runs, err := s.payoutSvc.ListRuns(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

func (s *Server) GetPayoutRun(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	run, err := s.payoutSvc.GetRun(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) UpdatePayoutRunTaxConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var cfg taxdomain.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	run, err := s.payoutSvc.UpdateTaxConfig(c.Request.Context(), id, cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) SetPayoutAdjustment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req payoutdomain.SetAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	run, err := s.payoutSvc.SetAdjustment(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) SimulatePayoutRun(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.payoutSvc.Simulate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) FinalizePayoutRun(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.payoutSvc.Finalize(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetPayoutBreakdown(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	breakdowns, err := s.payoutSvc.CurrentBreakdown(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": breakdowns})
}
