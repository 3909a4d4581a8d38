package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/mw"
)

// GetUsers handles the GET /api/users request.
func GetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []model.User
		if err := db.Preload("Role").Order("username").Find(&users).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

type userRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name" binding:"required"`
	RoleID      int64  `json:"role_id" binding:"required"`
}

// CreateUser handles the POST /api/users request.
func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		RoleID:       req.RoleID,
		Active:       true,
	}
	if err := h.store.DB().Create(&user).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles the PUT /api/users/:id request. Password changes
// only when a new one is supplied.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user model.User
	if err := h.store.DB().First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updates := map[string]any{
		"username":     req.Username,
		"display_name": req.DisplayName,
		"role_id":      req.RoleID,
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
			return
		}
		updates["password_hash"] = hash
	}

	if err := h.store.DB().Model(&user).Updates(updates).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ToggleUserActive handles the POST /api/users/:id/toggle-active
// request. Deactivation also revokes the user's open sessions.
func (h *Handler) ToggleUserActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if mw.CurrentUser(c).ID == id {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot toggle your own account"})
		return
	}

	var user model.User
	if err := h.store.DB().First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updated, err := h.store.SetUserActive(c.Request.Context(), id, !user.Active)
	if err != nil {
		storeError(c, err)
		return
	}
	if !updated.Active {
		h.sessions.DestroyAllFor(id)
	}
	c.JSON(http.StatusOK, updated)
}
