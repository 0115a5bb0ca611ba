package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/internal/metrics"
	"github.com/arnavshah/duty-scheduler-go/pkg/auth"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Auth    *auth.Service
	Config  *config.Config
	Metrics metrics.Recorder
	Log     logger.Logger
}

// New wires a handler, falling back to no-op metrics and logging.
func New(db *gorm.DB, cfg *config.Config, rec metrics.Recorder, log logger.Logger) *Handler {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{DB: db, Auth: auth.New(cfg.Auth), Config: cfg, Metrics: rec, Log: log}
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key for fill routes and enforces
// the key's daily request limit.
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}
		userID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}
		apiKey, err := auth.TouchAPIKey(h.DB, key, userID)
		if err != nil {
			h.Log.Errorf("api key %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
			return
		}
		usage, err := database.UsageOf(h.DB, apiKey.ID)
		if err == nil && len(usage) > 0 && usage[0].Date == today() && usage[0].RequestCount >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily request limit reached"})
			return
		}
		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// Login handles coordinator login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok := auth.Authenticate(h.DB, req.Username, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	token, err := h.Auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	key := h.Auth.GenerateHMACKey(req.Name)
	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
		RateLimit:  req.RateLimit,
	}
	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not create key record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": apiKey.ID, "name": req.Name, "key": key})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Order("id").Find(&keys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	res := h.DB.Delete(&database.APIKey{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the daily request limit of a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}
	// JSON body first, then the query string
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}
	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}
	res := h.DB.Model(&database.APIKey{}).Where("id = ?", c.Param("id")).Update("rate_limit", req.RateLimit)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", c.Param("id")).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// StaticFS returns the embedded filesystem for static assets
func StaticFS() (http.FileSystem, error) {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
