package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/mw"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token    string     `json:"token"`
	Redirect string     `json:"redirect"`
	User     model.User `json:"user"`
}

// Login exchanges credentials for an opaque session token. The token is
// set as an HTTP-only cookie and echoed in the body for API clients.
// The response carries the role-derived landing path for the front end.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user model.User
	err := h.store.DB().Preload("Role").Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}

	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := h.sessions.Create(user.ID)
	c.SetCookie(h.cfg.Session.CookieName, token, h.cfg.Session.TTLMinutes*60, "/",
		"", h.cfg.Session.CookieSecure, true)

	c.JSON(http.StatusOK, loginResponse{
		Token:    token,
		Redirect: auth.RedirectFor(user.Role.Key),
		User:     user,
	})
}

// Logout destroys the current session and clears the cookie. The token
// is resolved the same way the auth middleware resolves it, so bearer
// clients are logged out too, not just browsers.
func (h *Handler) Logout(c *gin.Context) {
	if token := mw.SessionToken(c, h.cfg.Session.CookieName); token != "" {
		h.sessions.Destroy(token)
	}
	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me returns the authenticated user with their role and landing path.
func (h *Handler) Me(c *gin.Context) {
	user := mw.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"redirect": auth.RedirectFor(user.Role.Key),
	})
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
