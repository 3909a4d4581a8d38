package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/parse"
)

// VacancyResponse is the public view of an available room.
type VacancyResponse struct {
	RoomNumber string          `json:"room_number"`
	Building   string          `json:"building"`
	Floor      int             `json:"floor"`
	Type       model.RoomType  `json:"type"`
	Price      decimal.Decimal `json:"price"`
}

// GetVacancies handles the public GET /api/vacancies request.
func GetVacancies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rooms []model.Room
		if err := db.Where("status = ?", model.RoomStatusVacant).
			Order("room_number").
			Find(&rooms).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vacancies"})
			return
		}

		responses := make([]VacancyResponse, 0, len(rooms))
		for _, room := range rooms {
			responses = append(responses, VacancyResponse{
				RoomNumber: room.RoomNumber,
				Building:   room.Building,
				Floor:      room.Floor,
				Type:       room.Type,
				Price:      room.Price,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// GetRooms handles the GET /api/rooms request, optionally filtered by status.
func GetRooms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("room_number")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var rooms []model.Room
		if err := query.Find(&rooms).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
			return
		}
		c.JSON(http.StatusOK, rooms)
	}
}

// GetRoom handles the GET /api/rooms/:id request.
func GetRoom(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var room model.Room
		if err := db.First(&room, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, room)
	}
}

type roomRequest struct {
	RoomNumber string           `json:"room_number" binding:"required"`
	Building   string           `json:"building"`
	Floor      int              `json:"floor"`
	Type       model.RoomType   `json:"type" binding:"required,oneof=AC Fan"`
	Price      decimal.Decimal  `json:"price" binding:"required"`
	Status     model.RoomStatus `json:"status" binding:"omitempty,oneof=Vacant Occupied"`
}

// CreateRoom handles the POST /api/rooms request. Building and floor
// are derived from the room number when not supplied.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := model.Room{
		RoomNumber: req.RoomNumber,
		Building:   req.Building,
		Floor:      req.Floor,
		Type:       req.Type,
		Price:      req.Price,
		Status:     model.RoomStatusVacant,
	}
	if req.Status != "" {
		room.Status = req.Status
	}

	if room.Floor == 0 || room.Building == "" {
		if parsed, err := parse.ParseRoomNumber(req.RoomNumber); err == nil {
			if room.Floor == 0 {
				room.Floor = parsed.Floor
			}
			if room.Building == "" {
				room.Building = parsed.Building
			}
		}
	}

	if err := h.store.DB().Create(&room).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles the PUT /api/rooms/:id request.
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updates := map[string]any{
		"room_number": req.RoomNumber,
		"building":    req.Building,
		"floor":       req.Floor,
		"type":        req.Type,
		"price":       req.Price,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if err := h.store.DB().Model(&room).Updates(updates).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles the DELETE /api/rooms/:id request. Occupied rooms
// cannot be deleted.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if room.Status == model.RoomStatusOccupied {
		c.JSON(http.StatusConflict, gin.H{"error": "room is occupied"})
		return
	}
	if err := h.store.DB().Delete(&room).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
