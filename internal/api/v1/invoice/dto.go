package invoice

import (
	"fmt"
	"telecom-backend/internal/models"
	"telecom-backend/internal/services"
	"time"
)

// CreateInvoiceInput defines the request body for issuing a new invoice.
type CreateInvoiceInput struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"omitempty,max=500"`
	DueInDays   int     `json:"due_in_days" binding:"omitempty,gte=1,lte=365"`
}

// InvoiceResponse is the wire form of an invoice.
type InvoiceResponse struct {
	ID            uint       `json:"id"`
	InvoiceNumber *string    `json:"invoice_number,omitempty"`
	Amount        float64    `json:"amount"`
	IssueDate     time.Time  `json:"issue_date"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Status        string     `json:"status"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// InvoiceDetailResponse extends InvoiceResponse with derived fields for
// the detail view.
type InvoiceDetailResponse struct {
	InvoiceResponse
	DaysToDue       *int   `json:"days_to_due,omitempty"`
	CanPay          bool   `json:"can_pay"`
	FormattedAmount string `json:"formatted_amount"`
}

// PaymentResponse confirms a successful payment.
type PaymentResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Invoice    InvoiceResponse `json:"invoice"`
	AmountPaid string          `json:"amount_paid"`
	PaidAt     time.Time       `json:"paid_at"`
}

// SummaryResponse bundles pending and paid invoices with the statistics.
type SummaryResponse struct {
	PendingInvoices []InvoiceResponse           `json:"pending_invoices"`
	PaidInvoices    []InvoiceResponse           `json:"paid_invoices"`
	Statistics      *services.InvoiceStatistics `json:"statistics"`
}

func toInvoiceResponse(i models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		Amount:        i.Amount,
		IssueDate:     i.IssueDate,
		DueDate:       i.DueDate,
		Status:        string(i.Status),
		Description:   i.Description,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toInvoiceResponses(invoices []models.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, i := range invoices {
		responses = append(responses, toInvoiceResponse(i))
	}
	return responses
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
