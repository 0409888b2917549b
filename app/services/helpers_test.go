package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/models/migrations"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.AutoMigrate(db))
	return db
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentEmail
}

func (f *fakeSender) SendHTMLEmail(to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (f *fakeSender) last() sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentEmail{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var errSMTPDown = errors.New("smtp: connection refused")

type fakeGateway struct {
	link    string
	err     error
	status  *services.PaymentStatus
	created []string
}

func (g *fakeGateway) CreatePaymentLink(ctx context.Context, invoice *models.Invoice) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.created = append(g.created, invoice.InvoiceNumber)
	return g.link, nil
}

func (g *fakeGateway) CheckStatus(ctx context.Context, invoiceNumber string) (*services.PaymentStatus, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.status, nil
}

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
