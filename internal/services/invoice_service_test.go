package services

import (
	"errors"
	"sync"
	"telecom-backend/internal/database"
	"telecom-backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInvoiceTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	// A single connection keeps concurrent writes serialized on the
	// in-memory database instead of tripping sqlite table locks.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.Migrator().DropTable(&models.User{}, &models.Invoice{})
	db.AutoMigrate(&models.User{}, &models.Invoice{})

	database.DB = db
}

func seedUser(username string) models.User {
	user := models.User{
		Username:     username,
		PasswordHash: "irrelevant",
	}
	database.DB.Create(&user)
	return user
}

func seedInvoice(userID uint, amount float64, status models.InvoiceStatus) models.Invoice {
	invoice := models.Invoice{
		UserID:    userID,
		Amount:    amount,
		IssueDate: time.Now(),
		Status:    status,
	}
	database.DB.Create(&invoice)
	return invoice
}

func TestPayInvoice(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")
	invoice := seedInvoice(owner.ID, 100.0, models.InvoiceStatusPending)

	paid, err := PayInvoice(invoice.ID, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)

	// Second attempt must observe PAID, never double-apply
	_, err = PayInvoice(invoice.ID, owner.ID)
	assert.ErrorIs(t, err, ErrInvoiceAlreadyPaid)

	var stored models.Invoice
	database.DB.First(&stored, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
}

func TestPayInvoiceNotFound(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")

	_, err := PayInvoice(9999, owner.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestPayInvoiceForbidden(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")
	intruder := seedUser("intruder")
	invoice := seedInvoice(owner.ID, 100.0, models.InvoiceStatusPending)

	_, err := PayInvoice(invoice.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrNotInvoiceOwner)

	var stored models.Invoice
	database.DB.First(&stored, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPending, stored.Status)
}

func TestPayInvoiceInvalidState(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")

	tests := []struct {
		name   string
		status models.InvoiceStatus
	}{
		{name: "Expired Invoice", status: models.InvoiceStatusExpired},
		{name: "Cancelled Invoice", status: models.InvoiceStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := seedInvoice(owner.ID, 50.0, tt.status)

			_, err := PayInvoice(invoice.ID, owner.ID)

			var stateErr *InvalidStateError
			assert.True(t, errors.As(err, &stateErr))
			assert.Equal(t, tt.status, stateErr.Status)
		})
	}
}

func TestPayOverdueInvoice(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")

	// Overdue PENDING invoices stay payable, no surcharge or rejection
	dueDate := time.Now().AddDate(0, 0, -30)
	invoice := models.Invoice{
		UserID:    owner.ID,
		Amount:    75.0,
		IssueDate: time.Now().AddDate(0, -2, 0),
		DueDate:   &dueDate,
		Status:    models.InvoiceStatusPending,
	}
	database.DB.Create(&invoice)

	paid, err := PayInvoice(invoice.ID, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
}

func TestPayInvoiceConcurrent(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")
	invoice := seedInvoice(owner.ID, 100.0, models.InvoiceStatusPending)

	const attempts = 2
	results := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := PayInvoice(invoice.ID, owner.ID)
			results[idx] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var stateErr *InvalidStateError
		losable := errors.Is(err, ErrInvoiceAlreadyPaid) || errors.As(err, &stateErr)
		assert.True(t, losable, "loser must observe AlreadyPaid or InvalidState, got: %v", err)
	}
	assert.Equal(t, 1, successes, "exactly one concurrent payment may succeed")

	var stored models.Invoice
	database.DB.First(&stored, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
}

func TestGetInvoice(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")
	intruder := seedUser("intruder")
	invoice := seedInvoice(owner.ID, 10.0, models.InvoiceStatusPaid)

	got, err := GetInvoice(invoice.ID, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, invoice.ID, got.ID)

	// Ownership is enforced regardless of invoice status
	_, err = GetInvoice(invoice.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrNotInvoiceOwner)

	_, err = GetInvoice(12345, owner.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestCanAccess(t *testing.T) {
	invoice := models.Invoice{UserID: 7}
	assert.True(t, CanAccess(7, &invoice))
	assert.False(t, CanAccess(8, &invoice))
}

func TestListInvoicesScoped(t *testing.T) {
	setupInvoiceTestDB()

	alice := seedUser("alice")
	bob := seedUser("bob")

	seedInvoice(alice.ID, 100.0, models.InvoiceStatusPending)
	seedInvoice(alice.ID, 50.0, models.InvoiceStatusPaid)
	seedInvoice(bob.ID, 30.0, models.InvoiceStatusPending)

	invoices, err := ListInvoices(alice.ID)
	assert.NoError(t, err)
	assert.Len(t, invoices, 2)
	for _, inv := range invoices {
		assert.Equal(t, alice.ID, inv.UserID)
	}

	pending, err := ListPendingInvoices(alice.ID)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, models.InvoiceStatusPending, pending[0].Status)

	paid, err := ListPaidInvoices(alice.ID)
	assert.NoError(t, err)
	assert.Len(t, paid, 1)
	assert.Equal(t, models.InvoiceStatusPaid, paid[0].Status)
}

func TestListPendingInvoicesOrder(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")

	far := time.Now().AddDate(0, 0, 30)
	near := time.Now().AddDate(0, 0, 5)

	database.DB.Create(&models.Invoice{UserID: owner.ID, Amount: 10, IssueDate: time.Now(), DueDate: &far, Status: models.InvoiceStatusPending})
	database.DB.Create(&models.Invoice{UserID: owner.ID, Amount: 20, IssueDate: time.Now(), DueDate: &near, Status: models.InvoiceStatusPending})

	pending, err := ListPendingInvoices(owner.ID)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)
	// Closest due date first
	assert.Equal(t, 20.0, pending[0].Amount)
}

func TestCreateInvoice(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")

	invoice, err := CreateInvoice(owner.ID, 120.50, "Fiber plan", 0)
	assert.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPending, invoice.Status)
	assert.Equal(t, 120.50, invoice.Amount)
	assert.NotNil(t, invoice.InvoiceNumber)
	assert.NotNil(t, invoice.DueDate)
	assert.False(t, invoice.DueDate.Before(invoice.IssueDate))

	_, err = CreateInvoice(owner.ID, 0, "free", 30)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = CreateInvoice(owner.ID, -5, "negative", 30)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUserStatistics(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")
	other := seedUser("other")

	seedInvoice(owner.ID, 100.0, models.InvoiceStatusPending)
	seedInvoice(owner.ID, 50.0, models.InvoiceStatusPaid)
	seedInvoice(owner.ID, 30.0, models.InvoiceStatusPending)
	seedInvoice(owner.ID, 10.0, models.InvoiceStatusExpired)
	seedInvoice(owner.ID, 20.0, models.InvoiceStatusCancelled)
	seedInvoice(other.ID, 999.0, models.InvoiceStatusPending)

	stats, err := UserStatistics(owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalInvoices)
	assert.Equal(t, int64(2), stats.PendingInvoices)
	assert.Equal(t, int64(1), stats.PaidInvoices)
	assert.Equal(t, 130.0, stats.TotalPendingAmount)
	assert.Equal(t, 50.0, stats.TotalPaidAmount)
}

func TestUserStatisticsEmpty(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")

	stats, err := UserStatistics(owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalInvoices)
	assert.Equal(t, 0.0, stats.TotalPendingAmount)
	assert.Equal(t, 0.0, stats.TotalPaidAmount)
}

func TestGetInvoiceSummary(t *testing.T) {
	setupInvoiceTestDB()

	owner := seedUser("owner")
	seedInvoice(owner.ID, 100.0, models.InvoiceStatusPending)
	seedInvoice(owner.ID, 50.0, models.InvoiceStatusPaid)

	summary, err := GetInvoiceSummary(owner.ID)
	assert.NoError(t, err)
	assert.Len(t, summary.PendingInvoices, 1)
	assert.Len(t, summary.PaidInvoices, 1)
	assert.Equal(t, int64(2), summary.Statistics.TotalInvoices)
}
