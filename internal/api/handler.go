package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dorm-manager-backend/config"
	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/notification"
	"dorm-manager-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	sessions *auth.Sessions
	pool     *notification.WorkerPool
	cfg      *config.Config
}

// NewHandler creates a new API handler. The worker pool may be nil when
// push notifications are disabled.
func NewHandler(s store.Store, sessions *auth.Sessions, pool *notification.WorkerPool, cfg *config.Config) *Handler {
	return &Handler{
		store:    s,
		sessions: sessions,
		pool:     pool,
		cfg:      cfg,
	}
}

// notify dispatches a push event when the worker pool is running.
func (h *Handler) notify(userID *int64, message string) {
	if h.pool == nil || userID == nil {
		return
	}
	h.pool.Dispatch(notification.Event{UserID: *userID, Message: message})
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// storeError maps store sentinel errors to HTTP statuses. Anything
// unrecognized is a persistence failure: logged in full, surfaced as a
// generic message.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrRoomOccupied),
		errors.Is(err, store.ErrActiveContract),
		errors.Is(err, store.ErrDuplicateInvoice),
		errors.Is(err, store.ErrNoCurrentReading),
		errors.Is(err, store.ErrInvoiceNotBillable),
		errors.Is(err, store.ErrPaymentRejected),
		errors.Is(err, store.ErrPaymentVerified),
		errors.Is(err, store.ErrContractInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("persistence failure on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
