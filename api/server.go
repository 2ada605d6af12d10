package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Config holds HTTP API configuration
type Config struct {
	Addr   string
	APIKey string
}

// Server exposes the key lookup and generation endpoints over HTTP
type Server struct {
	config     Config
	keyService service.KeyService
	httpServer *http.Server
}

func New(config Config, keyService service.KeyService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:     config,
		keyService: keyService,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "x-api-key"}
	router.Use(cors.New(corsConfig))

	router.GET("/api/ping", s.handlePing)
	router.GET("/api/checkkey", s.handleCheckKey)

	authed := router.Group("/api", s.requireAPIKey())
	authed.POST("/genkey", s.handleGenKey)

	s.httpServer = &http.Server{
		Addr:    config.Addr,
		Handler: router,
	}

	return s
}

// Start runs the HTTP server until Shutdown is called
func (s *Server) Start() error {
	log.Infof("API server listening on %s", s.config.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requireAPIKey rejects requests without the configured x-api-key header
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.APIKey == "" || c.GetHeader("x-api-key") != s.config.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCheckKey(c *gin.Context) {
	code := c.Query("key")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	key, err := s.keyService.Lookup(c.Request.Context(), code)
	if err != nil {
		log.Errorf("Error looking up key: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if key == nil {
		c.JSON(http.StatusNotFound, gin.H{"valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   !key.Used && !key.IsExpired(time.Now()),
		"used":    key.Used,
		"expired": key.IsExpired(time.Now()),
		"mode":    key.Mode,
	})
}

type genKeyRequest struct {
	GuildID      int64  `json:"guild_id" binding:"required"`
	Count        int    `json:"count"`
	Mode         string `json:"mode"`
	Prize        string `json:"prize"`
	ExpiresHours int    `json:"expires_hours"`
}

func (s *Server) handleGenKey(c *gin.Context) {
	var req genKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Count == 0 {
		req.Count = 1
	}
	mode := models.KeyModeRandom
	if req.Mode != "" {
		mode = models.KeyMode(req.Mode)
	}
	var expiresIn time.Duration
	if req.ExpiresHours > 0 {
		expiresIn = time.Duration(req.ExpiresHours) * time.Hour
	}

	// CreatedBy 0 marks keys minted through the API rather than a member
	keys, reason, err := s.keyService.GenerateKeys(c.Request.Context(), req.GuildID, 0, req.Count, mode, req.Prize, expiresIn)
	if err != nil {
		log.Errorf("Error generating keys over API: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		return
	}

	switch reason {
	case models.ReasonNone:
	case models.ReasonPrizeMissing:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "prize not found"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid count or mode"})
		return
	}

	codes := make([]string, 0, len(keys))
	for _, key := range keys {
		codes = append(codes, key.Code)
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}
