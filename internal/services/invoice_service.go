package services

import (
	"errors"
	"fmt"
	"strings"
	"telecom-backend/internal/database"
	"telecom-backend/internal/models"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("invoice not found")
var ErrNotInvoiceOwner = errors.New("you do not have permission to access this invoice")
var ErrInvoiceAlreadyPaid = errors.New("invoice is already paid")
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// InvalidStateError reports a payment attempt against an invoice that is
// neither PENDING nor PAID, naming the state it was found in.
type InvalidStateError struct {
	Status models.InvoiceStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot pay an invoice in state %s", e.Status)
}

// CanAccess reports whether the user owns the invoice. There are no
// role-based overrides; the owner is the only principal allowed in.
func CanAccess(userID uint, invoice *models.Invoice) bool {
	return invoice.UserID == userID
}

// ListInvoices returns every invoice owned by the user, newest issue date
// first.
func ListInvoices(userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := database.DB.
		Where("user_id = ?", userID).
		Order("issue_date desc").
		Find(&invoices).Error
	return invoices, err
}

// ListPendingInvoices returns the user's PENDING invoices, closest due
// date first.
func ListPendingInvoices(userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := database.DB.
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPending).
		Order("due_date asc").
		Find(&invoices).Error
	return invoices, err
}

// ListPaidInvoices returns the user's PAID invoices, newest issue date
// first.
func ListPaidInvoices(userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := database.DB.
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPaid).
		Order("issue_date desc").
		Find(&invoices).Error
	return invoices, err
}

// GetInvoice loads a single invoice, enforcing ownership.
func GetInvoice(invoiceID, requesterID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := database.DB.First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	if !CanAccess(requesterID, &invoice) {
		return nil, ErrNotInvoiceOwner
	}

	return &invoice, nil
}

// PayInvoice applies the only legal status transition, PENDING -> PAID.
// The precondition check and the write are a single conditional UPDATE so
// that of two concurrent payers exactly one succeeds; the loser observes
// the invoice as already paid. Overdue PENDING invoices are payable; the
// due date is deliberately not consulted.
func PayInvoice(invoiceID, requesterID uint) (*models.Invoice, error) {
	invoice, err := GetInvoice(invoiceID, requesterID)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusPending:
		// eligible
	case models.InvoiceStatusPaid:
		return nil, ErrInvoiceAlreadyPaid
	default:
		return nil, &InvalidStateError{Status: invoice.Status}
	}

	result := database.DB.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", invoiceID, models.InvoiceStatusPending).
		Update("status", models.InvoiceStatusPaid)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost a race between the read and the write: someone else paid it,
		// or it vanished.
		var current models.Invoice
		if err := database.DB.First(&current, invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvoiceNotFound
			}
			return nil, err
		}
		if current.Status == models.InvoiceStatusPaid {
			return nil, ErrInvoiceAlreadyPaid
		}
		return nil, &InvalidStateError{Status: current.Status}
	}

	var updated models.Invoice
	if err := database.DB.First(&updated, invoiceID).Error; err != nil {
		return nil, err
	}

	zap.L().Info("invoice paid",
		zap.Uint("invoice_id", updated.ID),
		zap.Uint("user_id", requesterID),
		zap.Float64("amount", updated.Amount))

	return &updated, nil
}

// CreateInvoice issues a new PENDING invoice for the user with a generated
// invoice number. dueInDays of 0 defaults to 30.
func CreateInvoice(userID uint, amount float64, description string, dueInDays int) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if dueInDays <= 0 {
		dueInDays = 30
	}

	number := "FAC-" + strings.ToUpper(uuid.New().String()[:8])
	now := time.Now()
	dueDate := now.AddDate(0, 0, dueInDays)

	invoice := &models.Invoice{
		UserID:        userID,
		Amount:        amount,
		IssueDate:     now,
		DueDate:       &dueDate,
		Status:        models.InvoiceStatusPending,
		Description:   description,
		InvoiceNumber: &number,
	}

	if err := database.DB.Create(invoice).Error; err != nil {
		return nil, err
	}

	return invoice, nil
}

// InvoiceStatistics aggregates a user's invoices by status. EXPIRED and
// CANCELLED invoices count toward the total only; sums cover PENDING and
// PAID and are zero when no rows match.
type InvoiceStatistics struct {
	TotalInvoices      int64   `json:"total_invoices"`
	PendingInvoices    int64   `json:"pending_invoices"`
	PaidInvoices       int64   `json:"paid_invoices"`
	TotalPendingAmount float64 `json:"total_pending_amount"`
	TotalPaidAmount    float64 `json:"total_paid_amount"`
}

func UserStatistics(userID uint) (*InvoiceStatistics, error) {
	stats := &InvoiceStatistics{}

	if err := database.DB.Model(&models.Invoice{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalInvoices).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPending).
		Count(&stats.PendingInvoices).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPaid).
		Count(&stats.PaidInvoices).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPending).
		Scan(&stats.TotalPendingAmount).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPaid).
		Scan(&stats.TotalPaidAmount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// InvoiceSummary bundles the pending and paid lists with the statistics,
// for clients that render them as separate tabs.
type InvoiceSummary struct {
	PendingInvoices []models.Invoice   `json:"pending_invoices"`
	PaidInvoices    []models.Invoice   `json:"paid_invoices"`
	Statistics      *InvoiceStatistics `json:"statistics"`
}

func GetInvoiceSummary(userID uint) (*InvoiceSummary, error) {
	pending, err := ListPendingInvoices(userID)
	if err != nil {
		return nil, err
	}

	paid, err := ListPaidInvoices(userID)
	if err != nil {
		return nil, err
	}

	stats, err := UserStatistics(userID)
	if err != nil {
		return nil, err
	}

	return &InvoiceSummary{
		PendingInvoices: pending,
		PaidInvoices:    paid,
		Statistics:      stats,
	}, nil
}
