package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxSettingsBodyBytes = 1 << 20 // 1MB

// NewRouter constructs the Gin engine with routes wired. settings may be nil when no
// database is configured; the settings endpoints then answer 503. status may be nil.
func NewRouter(cfg Config, login *LoginService, guard *SessionGuard, settings SettingsRepository, status *StatusReporter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.RemoteIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Printf("invalid trusted proxies %v: %v", cfg.TrustedProxies, err)
	}

	r.Use(RequestIDMiddleware())
	r.Use(OriginRefererMiddleware(cfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	admin := api.Group("/admin")
	{
		admin.POST("/login", func(c *gin.Context) {
			var req struct {
				Username *string `json:"username"`
				Password *string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil || req.Username == nil || req.Password == nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
				return
			}

			res, err := login.SubmitPassword(c.Request.Context(), *req.Username, *req.Password)
			if err != nil {
				respondAuthError(c, err)
				return
			}
			if res.Success {
				log.Printf("[auth] password accepted ip=%s req=%s", c.ClientIP(), requestIDFrom(c))
			} else {
				log.Printf("[auth] password rejected ip=%s req=%s", c.ClientIP(), requestIDFrom(c))
			}
			noStore(c)
			c.JSON(http.StatusOK, res)
		})

		admin.POST("/verify-totp", func(c *gin.Context) {
			var req struct {
				Code  *string `json:"code"`
				Token *string `json:"token"`
			}
			if err := c.ShouldBindJSON(&req); err != nil || req.Code == nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
				return
			}
			token := ""
			if req.Token != nil {
				token = *req.Token
			}

			res, err := login.SubmitTOTP(c.Request.Context(), token, *req.Code, c.ClientIP())
			if err != nil {
				respondAuthError(c, err)
				return
			}
			if res.Valid {
				log.Printf("[auth] second factor accepted, session issued ip=%s req=%s", c.ClientIP(), requestIDFrom(c))
			} else {
				log.Printf("[auth] second factor rejected (%s) ip=%s req=%s", res.Message, c.ClientIP(), requestIDFrom(c))
			}
			noStore(c)
			c.JSON(http.StatusOK, res)
		})

		protected := admin.Group("")
		protected.Use(RequireAdminSession(guard))

		protected.POST("/logout", func(c *gin.Context) {
			token := BearerToken(c.GetHeader("Authorization"))
			if err := login.Logout(c.Request.Context(), token); err != nil {
				log.Printf("[auth] logout failed req=%s: %v", requestIDFrom(c), err)
				respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "failed to end session")
				return
			}
			c.Status(http.StatusNoContent)
		})

		protected.GET("/session", func(c *gin.Context) {
			noStore(c)
			c.JSON(http.StatusOK, adminSessionFrom(c))
		})

		protected.GET("/status", func(c *gin.Context) {
			if status == nil {
				respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Status not available")
				return
			}
			noStore(c)
			c.JSON(http.StatusOK, status.Collect(c.Request.Context()))
		})

		protected.GET("/settings", func(c *gin.Context) {
			if settings == nil {
				respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Settings storage not available")
				return
			}
			rec, err := settings.Get(c.Request.Context(), SiteSettingsKey)
			if err != nil {
				if errors.Is(err, ErrSettingNotFound) {
					c.JSON(http.StatusOK, gin.H{})
					return
				}
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load settings")
				return
			}
			noStore(c)
			c.Data(http.StatusOK, "application/json; charset=utf-8", rec.Value)
		})

		protected.POST("/settings", saveDocumentHandler(settings, SiteSettingsKey))
		protected.POST("/services", saveDocumentHandler(settings, ServicesKey))
		protected.POST("/thresholds", saveDocumentHandler(settings, FlowThresholdsKey))

		protected.POST("/content", func(c *gin.Context) {
			if settings == nil {
				respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Settings storage not available")
				return
			}
			var req struct {
				Page    string  `json:"page"`
				Section string  `json:"section"`
				Content *string `json:"content"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid content data")
				return
			}
			page := strings.TrimSpace(req.Page)
			section := strings.TrimSpace(req.Section)
			if page == "" || section == "" || req.Content == nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "page, section, content are required")
				return
			}
			value, err := json.Marshal(*req.Content)
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid content data")
				return
			}
			if err := settings.Put(c.Request.Context(), ContentKey(page, section), value); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Failed to save content")
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	}

	return r
}

// saveDocumentHandler stores the request body, which must be a JSON object, under key.
func saveDocumentHandler(settings SettingsRepository, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if settings == nil {
			respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Settings storage not available")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSettingsBodyBytes)
		raw, err := c.GetRawData()
		if err != nil || !isJSONObject(raw) {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+strings.ReplaceAll(key, "_", " ")+" data")
			return
		}
		if err := settings.Put(c.Request.Context(), key, json.RawMessage(raw)); err != nil {
			log.Printf("[settings] save %s failed req=%s: %v", key, requestIDFrom(c), err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Failed to save "+strings.ReplaceAll(key, "_", " "))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func isJSONObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{' && json.Valid(raw)
}

// respondAuthError maps login flow errors: configuration and storage problems are
// operator-side and answered 503, never as a failed login.
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAdminNotConfigured):
		log.Printf("[auth] admin password hash not configured req=%s", requestIDFrom(c))
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Admin not configured")
	case errors.Is(err, ErrTOTPNotConfigured):
		log.Printf("[auth] totp secret not configured req=%s", requestIDFrom(c))
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "TOTP not configured")
	default:
		log.Printf("[auth] login step failed req=%s: %v", requestIDFrom(c), err)
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "authentication temporarily unavailable")
	}
}
