package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusExpired   InvoiceStatus = "EXPIRED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is a billable record owed by exactly one user. Only the
// PENDING -> PAID transition is ever applied; EXPIRED and CANCELLED are
// descriptive states that nothing in the system sets automatically.
type Invoice struct {
	ID            uint `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint          `gorm:"index;not null"`
	Amount        float64       `gorm:"type:decimal(10,2);not null"`
	IssueDate     time.Time     `gorm:"not null"`
	DueDate       *time.Time    // optional, never before IssueDate
	Status        InvoiceStatus `gorm:"type:varchar(20);index;not null;default:'PENDING'"`
	Description   string        `gorm:"type:varchar(500)"`
	InvoiceNumber *string       `gorm:"type:varchar(50);uniqueIndex"`
}

// IsPaymentEligible reports whether the invoice can currently accept a
// payment: it must still be PENDING and carry a positive amount. Overdue
// invoices remain eligible.
func (i *Invoice) IsPaymentEligible() bool {
	return i.Status == InvoiceStatusPending && i.Amount > 0
}
