package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	"github.com/noah-isme/sma-procurement-api/pkg/config"
	"github.com/noah-isme/sma-procurement-api/pkg/mailer"
)

type mockMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *mockMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func notificationConfig() config.NotificationsConfig {
	return config.NotificationsConfig{Workers: 1, MaxRetries: 1, RetryDelay: 10 * time.Millisecond}
}

func TestNotifyBidPublishedFansOut(t *testing.T) {
	m := &mockMailer{}
	svc := NewNotificationService(m, notificationConfig(), zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	bid := &models.BidRequest{Title: "Canteen supplies", Deadline: time.Now().Add(48 * time.Hour)}
	svc.NotifyBidPublished(bid, []models.SupplierContact{
		{ID: "s1", Email: "s1@example.com", FullName: "Supplier One"},
		{ID: "s2", Email: "s2@example.com", FullName: "Supplier Two"},
	})

	waitFor(t, func() bool { return m.sentCount() == 2 })
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Contains(t, m.sent[0].Subject, "Canteen supplies")
}

func TestNotifyOfferAwarded(t *testing.T) {
	m := &mockMailer{}
	svc := NewNotificationService(m, notificationConfig(), zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	svc.NotifyOfferAwarded(models.SupplierContact{
		ID: "s1", Email: "s1@example.com", FullName: "Supplier One",
	}, "Onions", "Canteen supplies", dec("2000"))

	waitFor(t, func() bool { return m.sentCount() == 1 })
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, "s1@example.com", m.sent[0].ToEmail)
	assert.Contains(t, m.sent[0].TextBody, "2000.00")
}

func TestNotificationsDroppedWithoutMailer(t *testing.T) {
	svc := NewNotificationService(nil, notificationConfig(), zap.NewNop())
	svc.Start(context.Background())

	svc.NotifyOfferAwarded(models.SupplierContact{
		ID: "s1", Email: "s1@example.com", FullName: "Supplier One",
	}, "Onions", "Canteen supplies", dec("2000"))

	// Dropping must not wedge the workers on shutdown.
	svc.Stop()
}
