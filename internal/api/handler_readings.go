package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/billing"
	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/mw"
)

// GetMeterReadings handles the GET /api/meter-readings request,
// optionally filtered by room.
func GetMeterReadings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("reading_date DESC")
		if roomID := c.Query("room_id"); roomID != "" {
			query = query.Where("room_id = ?", roomID)
		}

		var readings []model.MeterReading
		if err := query.Find(&readings).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve meter readings"})
			return
		}
		c.JSON(http.StatusOK, readings)
	}
}

// Counter values are pointers so that a legitimate zero reading (a
// brand-new meter) still passes the required check.
type meterReadingRequest struct {
	RoomID      int64            `json:"room_id" binding:"required"`
	ReadingDate time.Time        `json:"reading_date" binding:"required"`
	Water       *decimal.Decimal `json:"water" binding:"required"`
	Electric    *decimal.Decimal `json:"electric" binding:"required"`
	Confirm     bool             `json:"confirm"`
}

// usageLimits builds the abnormal-usage thresholds from configuration.
func (h *Handler) usageLimits() billing.Limits {
	return billing.Limits{
		Water:    decimal.NewFromFloat(h.cfg.Billing.WaterUsageWarnLimit),
		Electric: decimal.NewFromFloat(h.cfg.Billing.ElectricUsageWarnLimit),
	}
}

// checkReading validates the submitted counters against the room's
// previous reading. A first-ever reading has nothing to compare with
// and produces no warnings.
func (h *Handler) checkReading(c *gin.Context, req meterReadingRequest) ([]billing.Warning, error) {
	prev, err := h.store.PreviousReading(c.Request.Context(), req.RoomID, req.ReadingDate)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, nil
	}

	pair := billing.MeterPair{
		PrevWater:    prev.Water,
		CurrWater:    *req.Water,
		PrevElectric: prev.Electric,
		CurrElectric: *req.Electric,
	}
	return billing.CheckUsage(pair, h.usageLimits()), nil
}

// CreateMeterReading handles the POST /api/meter-readings request.
// Anomalies (meter rollback, abnormally high usage) are returned as
// confirmable warnings; the operator resubmits with confirm=true to
// persist anyway.
func (h *Handler) CreateMeterReading(c *gin.Context) {
	var req meterReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warnings, err := h.checkReading(c, req)
	if err != nil {
		storeError(c, err)
		return
	}
	if len(warnings) > 0 && !req.Confirm {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"warnings": warnings,
			"message":  "resubmit with confirm=true to save anyway",
		})
		return
	}

	reading := model.MeterReading{
		RoomID:      req.RoomID,
		ReadingDate: req.ReadingDate,
		Water:       *req.Water,
		Electric:    *req.Electric,
		RecordedBy:  mw.CurrentUser(c).ID,
	}
	if err := h.store.CreateReading(c.Request.Context(), &reading); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reading)
}

type bulkReadingResult struct {
	RoomID   int64               `json:"room_id"`
	Saved    bool                `json:"saved"`
	Error    string              `json:"error,omitempty"`
	Warnings []billing.Warning   `json:"warnings,omitempty"`
	Reading  *model.MeterReading `json:"reading,omitempty"`
}

// BulkCreateMeterReadings handles the POST /api/meter-readings/bulk
// request. Each room is an independent write: a failure or unconfirmed
// warning on one room never rolls back the others, and the per-room
// outcome is reported back.
func (h *Handler) BulkCreateMeterReadings(c *gin.Context) {
	var reqs []meterReadingRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := mw.CurrentUser(c).ID
	results := make([]bulkReadingResult, 0, len(reqs))
	for _, req := range reqs {
		result := bulkReadingResult{RoomID: req.RoomID}

		warnings, err := h.checkReading(c, req)
		if err != nil {
			result.Error = "failed to validate reading"
			results = append(results, result)
			continue
		}
		if len(warnings) > 0 && !req.Confirm {
			result.Warnings = warnings
			results = append(results, result)
			continue
		}

		reading := model.MeterReading{
			RoomID:      req.RoomID,
			ReadingDate: req.ReadingDate,
			Water:       *req.Water,
			Electric:    *req.Electric,
			RecordedBy:  userID,
		}
		if err := h.store.CreateReading(c.Request.Context(), &reading); err != nil {
			result.Error = "failed to save reading"
			results = append(results, result)
			continue
		}

		result.Saved = true
		result.Reading = &reading
		results = append(results, result)
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
