package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dorm-manager-backend/config"
	"dorm-manager-backend/internal/api"
	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/db"
	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/store"
)

const adminPassword = "integration-secret"

// setupServer builds a full API stack against an in-memory SQLite
// database seeded with the built-in roles and the admin account. The
// worker pool is nil, matching a deployment with push disabled.
func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	require.NoError(t, db.Seed(testDB, adminPassword))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Session.TTLMinutes = 60
	cfg.Session.TTL = time.Hour
	cfg.Session.Cleanup = time.Hour
	cfg.Session.CookieName = "dorm_session"
	cfg.Billing.WaterUsageWarnLimit = 50
	cfg.Billing.ElectricUsageWarnLimit = 1000
	cfg.Billing.DueDays = 7

	sessions := auth.NewSessions(cfg.Session.TTL, cfg.Session.Cleanup)
	router := api.NewRouter(store.NewGormStore(testDB), sessions, nil, cfg)
	return router, testDB
}

// doJSON performs one request against the router, authenticating with
// the bearer token when one is given.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// TestTenancyLifecycle walks one tenancy through the whole API: move-in,
// meter readings, invoice generation, payment and verification. The
// reference numbers: water 100→135 at 18/unit and electricity 200→250 at
// 8/unit on a 4500 rent with a 300 common fee total 5830.
func TestTenancyLifecycle(t *testing.T) {
	router, testDB := setupServer(t)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	var adminToken string
	t.Run("Admin Logs In", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "",
			gin.H{"username": "admin", "password": adminPassword})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Token    string `json:"token"`
			Redirect string `json:"redirect"`
		}
		decodeInto(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "/admin", resp.Redirect)
		adminToken = resp.Token
	})

	var room model.Room
	var tenant model.Tenant
	t.Run("Provisioning", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/settings", adminToken, gin.H{
			"water_unit_price":    "18",
			"electric_unit_price": "8",
			"common_fee":          "300",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodPost, "/api/rooms", adminToken, gin.H{
			"room_number": "404",
			"type":        "AC",
			"price":       "4500",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		decodeInto(t, w, &room)
		assert.Equal(t, 4, room.Floor, "floor should be derived from the room number")
		assert.Equal(t, model.RoomStatusVacant, room.Status)

		w = doJSON(t, router, http.MethodPost, "/api/tenants", adminToken, gin.H{
			"name":  "Somchai J.",
			"phone": "0812345678",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		decodeInto(t, w, &tenant)
		assert.Equal(t, model.TenantStatusPending, tenant.Status)
	})

	var contract model.Contract
	t.Run("Move In", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/contracts", adminToken, gin.H{
			"tenant_id":  tenant.ID,
			"room_id":    room.ID,
			"rent_price": "4500",
			"start_date": "2026-07-01T00:00:00Z",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		decodeInto(t, w, &contract)
		assert.True(t, contract.Active)

		var updatedRoom model.Room
		require.NoError(t, testDB.First(&updatedRoom, room.ID).Error)
		assert.Equal(t, model.RoomStatusOccupied, updatedRoom.Status)

		var updatedTenant model.Tenant
		require.NoError(t, testDB.First(&updatedTenant, tenant.ID).Error)
		assert.Equal(t, model.TenantStatusActive, updatedTenant.Status)

		// A second move-in into the same room must be refused.
		w = doJSON(t, router, http.MethodPost, "/api/contracts", adminToken, gin.H{
			"tenant_id":  tenant.ID,
			"room_id":    room.ID,
			"rent_price": "4500",
			"start_date": "2026-07-01T00:00:00Z",
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("Meter Readings", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/meter-readings", adminToken, gin.H{
			"room_id":      room.ID,
			"reading_date": "2026-07-31T00:00:00Z",
			"water":        "100",
			"electric":     "200",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodPost, "/api/meter-readings", adminToken, gin.H{
			"room_id":      room.ID,
			"reading_date": "2026-08-15T00:00:00Z",
			"water":        "135",
			"electric":     "250",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	var invoice model.Invoice
	t.Run("Invoice Generation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/invoices", adminToken, gin.H{
			"contract_id": contract.ID,
			"month":       8,
			"year":        2026,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		decodeInto(t, w, &invoice)

		assert.True(t, invoice.WaterTotal.Equal(decimal.NewFromInt(630)),
			"water total should be 630, got %s", invoice.WaterTotal)
		assert.True(t, invoice.ElectricTotal.Equal(decimal.NewFromInt(400)),
			"electric total should be 400, got %s", invoice.ElectricTotal)
		assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(5830)),
			"total should be 5830, got %s", invoice.TotalAmount)
		assert.Equal(t, model.InvoiceStatusPending, invoice.Status)

		// The same period must not be billable twice.
		w = doJSON(t, router, http.MethodPost, "/api/invoices", adminToken, gin.H{
			"contract_id": contract.ID,
			"month":       8,
			"year":        2026,
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("Rate Change Does Not Touch The Snapshot", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/settings", adminToken, gin.H{
			"water_unit_price": "25",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stored model.Invoice
		require.NoError(t, testDB.First(&stored, invoice.ID).Error)
		assert.True(t, stored.WaterUnitPrice.Equal(decimal.NewFromInt(18)))
		assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(5830)))
	})

	t.Run("Payment And Verification", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/payments", adminToken, gin.H{
			"invoice_id": invoice.ID,
			"amount":     "5830",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var payment model.Payment
		decodeInto(t, w, &payment)
		assert.Equal(t, model.PaymentStatusPending, payment.Status)

		// The invoice stays pending until an approver verifies.
		var stored model.Invoice
		require.NoError(t, testDB.First(&stored, invoice.ID).Error)
		assert.Equal(t, model.InvoiceStatusPending, stored.Status)

		w = doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/payments/%d/verify", payment.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var verifyResp struct {
			InvoicePaid bool `json:"invoice_paid"`
		}
		decodeInto(t, w, &verifyResp)
		assert.True(t, verifyResp.InvoicePaid)

		require.NoError(t, testDB.First(&stored, invoice.ID).Error)
		assert.Equal(t, model.InvoiceStatusPaid, stored.Status)

		// Re-verifying is idempotent and reports no new transition.
		w = doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/payments/%d/verify", payment.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeInto(t, w, &verifyResp)
		assert.False(t, verifyResp.InvoicePaid)
	})

	t.Run("Meter Rollback Needs Confirmation", func(t *testing.T) {
		body := gin.H{
			"room_id":      room.ID,
			"reading_date": "2026-09-15T00:00:00Z",
			"water":        "130", // below the previous 135
			"electric":     "260",
		}
		w := doJSON(t, router, http.MethodPost, "/api/meter-readings", adminToken, body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var resp struct {
			Warnings []struct {
				Code  string `json:"code"`
				Meter string `json:"meter"`
			} `json:"warnings"`
		}
		decodeInto(t, w, &resp)
		require.Len(t, resp.Warnings, 1)
		assert.Equal(t, "meter_rollback", resp.Warnings[0].Code)
		assert.Equal(t, "water", resp.Warnings[0].Meter)

		body["confirm"] = true
		w = doJSON(t, router, http.MethodPost, "/api/meter-readings", adminToken, body)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Logout Revokes The Bearer Session", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/logout", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodGet, "/api/auth/me", adminToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code,
			"a logged-out token must not resolve to a session")
	})
}

// TestAccessControl exercises the 401/403 split and the tenant portal.
func TestAccessControl(t *testing.T) {
	router, testDB := setupServer(t)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	t.Run("No Session Is 401", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/rooms", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp struct {
			Redirect string `json:"redirect"`
		}
		decodeInto(t, w, &resp)
		assert.Equal(t, "/login", resp.Redirect)
	})

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "",
		gin.H{"username": "admin", "password": adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var adminResp struct {
		Token string `json:"token"`
	}
	decodeInto(t, w, &adminResp)
	adminToken := adminResp.Token

	// Create a tenant portal account through the admin API.
	var tenantRole model.Role
	require.NoError(t, testDB.Where("key = ?", auth.RoleKeyTenant).First(&tenantRole).Error)

	w = doJSON(t, router, http.MethodPost, "/api/users", adminToken, gin.H{
		"username":     "somchai",
		"password":     "portal-pass-1",
		"display_name": "Somchai J.",
		"role_id":      tenantRole.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var portalUser model.User
	decodeInto(t, w, &portalUser)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "",
		gin.H{"username": "somchai", "password": "portal-pass-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tenantResp struct {
		Token    string `json:"token"`
		Redirect string `json:"redirect"`
	}
	decodeInto(t, w, &tenantResp)
	tenantToken := tenantResp.Token
	assert.Equal(t, "/portal", tenantResp.Redirect)

	t.Run("Missing Capability Is 403", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/rooms", tenantToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/invoices", tenantToken,
			gin.H{"contract_id": 1, "month": 8, "year": 2026})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Tenant Portal Lists Own Invoices Only", func(t *testing.T) {
		// An unlinked portal account sees an empty list, not an error.
		w := doJSON(t, router, http.MethodGet, "/api/portal/invoices", tenantToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var invoices []model.Invoice
		decodeInto(t, w, &invoices)
		assert.Empty(t, invoices)

		// Admins do not get a portal view of their own.
		w = doJSON(t, router, http.MethodGet, "/api/portal/invoices", adminToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Deactivation Kills The Session", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/users/%d/toggle-active", portalUser.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodGet, "/api/auth/me", tenantToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// A deactivated account cannot log back in either.
		w = doJSON(t, router, http.MethodPost, "/api/auth/login", "",
			gin.H{"username": "somchai", "password": "portal-pass-1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
