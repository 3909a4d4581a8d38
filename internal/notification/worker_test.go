package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dorm-manager-backend/internal/model"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:notification_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Role{}, &model.User{}, &model.PushSubscription{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(Event{UserID: 123, Message: "invoice issued"})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job.UserID)
		assert.Equal(t, "invoice issued", job.Message)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	db := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	role := model.Role{Name: "Tenant", Key: "tenant", TenantPortal: true}
	require.NoError(t, db.Create(&role).Error)
	user := model.User{Username: "somchai", PasswordHash: "x", DisplayName: "Somchai", RoleID: role.ID, Active: true}
	require.NoError(t, db.Create(&user).Error)

	t.Run("sends notification for each subscription of the user", func(t *testing.T) {
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
			UserID:   user.ID,
		}
		require.NoError(t, db.Create(&subscription).Error)

		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Invoice 2025-06 issued: 5830", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		wp.Dispatch(Event{UserID: user.ID, Message: "Invoice 2025-06 issued: 5830"})
		wg.Wait()

		require.NoError(t, db.Delete(&subscription).Error)
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
			UserID:   user.ID,
		}
		require.NoError(t, db.Create(&subscription).Error)

		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		wp.Dispatch(Event{UserID: user.ID, Message: "payment verified"})
		wg.Wait()

		// Give the worker a moment to run the delete after Send returns.
		assert.Eventually(t, func() bool {
			var count int64
			db.Model(&model.PushSubscription{}).
				Where("endpoint = ?", subscription.Endpoint).
				Count(&count)
			return count == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("no subscriptions means no send", func(t *testing.T) {
		called := false
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				called = true
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		wp.Dispatch(Event{UserID: 9999, Message: "nobody listening"})
		time.Sleep(100 * time.Millisecond)
		assert.False(t, called)
	})
}
