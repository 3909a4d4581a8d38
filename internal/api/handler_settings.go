package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dorm-manager-backend/internal/model"
)

// GetSettings handles the GET /api/settings request.
func GetSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings []model.Setting
		if err := db.Order("key").Find(&settings).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

// PutSettings handles the PUT /api/settings request: an upsert of
// key-value pairs. Values must be numeric since every setting feeds the
// billing rate snapshot. Existing invoices are unaffected by changes.
func (h *Handler) PutSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings supplied"})
		return
	}

	settings := make([]model.Setting, 0, len(req))
	for key, value := range req {
		if _, err := decimal.NewFromString(value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "setting " + key + " must be numeric"})
			return
		}
		settings = append(settings, model.Setting{Key: key, Value: value})
	}

	err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
