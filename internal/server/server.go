// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeetorjeet/yeetorjeet/internal/chains"
	"github.com/yeetorjeet/yeetorjeet/internal/dataflows"
	"github.com/yeetorjeet/yeetorjeet/internal/pipeline"
)

// Analyzer is the slice of the service the HTTP layer needs.
type Analyzer interface {
	Analyze(ctx context.Context, chainID int, tokenAddress, walletAddress string) (*pipeline.TokenAnalysis, error)
	TopTokens(ctx context.Context, chainID, limit int) ([]dataflows.DexScreenerToken, error)
	WalletStats(ctx context.Context, chainID int, walletAddress string, timeframe dataflows.Timeframe) (*dataflows.WalletStats, error)
	WalletTokens(ctx context.Context, chainID int, walletAddress string) ([]dataflows.UserToken, error)
}

// Server hosts the REST API.
type Server struct {
	svc Analyzer
	log zerolog.Logger
}

// New creates the HTTP server around a service.
func New(svc Analyzer, log zerolog.Logger) *Server {
	return &Server{
		svc: svc,
		log: log.With().Str("component", "server").Logger(),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/tokens/top", s.handleTopTokens)
		api.GET("/wallet/:address/stats", s.handleWalletStats)
		api.GET("/wallet/:address/tokens", s.handleWalletTokens)
	}

	return router
}

// Run serves the API until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("starting HTTP server")
	return s.Router().Run(addr)
}

type analyzeRequest struct {
	ChainID       int    `json:"chainId"`
	TokenAddress  string `json:"tokenAddress" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid request body"})
		return
	}
	if req.ChainID == 0 {
		req.ChainID = chains.Default.ID
	}

	analysis, err := s.svc.Analyze(c.Request.Context(), req.ChainID, req.TokenAddress, req.WalletAddress)
	if err != nil {
		s.log.Error().Err(err).Str("token", req.TokenAddress).Msg("analysis failed")
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": analysis})
}

func (s *Server) handleTopTokens(c *gin.Context) {
	chainID := queryInt(c, "chainId", chains.Default.ID)
	limit := queryInt(c, "limit", 12)

	tokens, err := s.svc.TopTokens(c.Request.Context(), chainID, limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": tokens})
}

func (s *Server) handleWalletStats(c *gin.Context) {
	chainID := queryInt(c, "chainId", chains.Default.ID)
	timeframe := dataflows.Timeframe(c.DefaultQuery("timeframe", string(dataflows.TimeframeMax)))

	stats, err := s.svc.WalletStats(c.Request.Context(), chainID, c.Param("address"), timeframe)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": stats})
}

func (s *Server) handleWalletTokens(c *gin.Context) {
	chainID := queryInt(c, "chainId", chains.Default.ID)

	tokens, err := s.svc.WalletTokens(c.Request.Context(), chainID, c.Param("address"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": tokens})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps pipeline sentinels to HTTP statuses: input validation is the
// client's fault, everything else is an upstream or synthesis failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidTokenAddress),
		errors.Is(err, pipeline.ErrInvalidWalletAddress),
		errors.Is(err, pipeline.ErrUnsupportedChain):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
