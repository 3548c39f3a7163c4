package invoice

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"telecom-backend/internal/models"
	"telecom-backend/internal/services"
	"telecom-backend/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	return value.(models.User), true
}

func invoiceIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid invoice ID"))
		return 0, false
	}
	return uint(id), true
}

func respondServiceError(c *gin.Context, err error) {
	var stateErr *services.InvalidStateError
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
	case errors.Is(err, services.ErrNotInvoiceOwner):
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
	case errors.Is(err, services.ErrInvoiceAlreadyPaid):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.As(err, &stateErr):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
	}
}

// List godoc
// @Summary List invoices
// @Description List every invoice owned by the authenticated user
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]invoice.InvoiceResponse}
// @Failure 401 {object} utils.Response
// @Router /invoices [get]
func List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	invoices, err := services.ListInvoices(u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Invoices retrieved successfully", toInvoiceResponses(invoices)))
}

// ListPending godoc
// @Summary List pending invoices
// @Description List the user's PENDING invoices, closest due date first
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]invoice.InvoiceResponse}
// @Failure 401 {object} utils.Response
// @Router /invoices/pending [get]
func ListPending(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	invoices, err := services.ListPendingInvoices(u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Pending invoices retrieved successfully", toInvoiceResponses(invoices)))
}

// ListPaid godoc
// @Summary List paid invoices
// @Description List the user's PAID invoices, newest issue date first
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]invoice.InvoiceResponse}
// @Failure 401 {object} utils.Response
// @Router /invoices/paid [get]
func ListPaid(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	invoices, err := services.ListPaidInvoices(u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Paid invoices retrieved successfully", toInvoiceResponses(invoices)))
}

// Statistics godoc
// @Summary Invoice statistics
// @Description Counts and sums of the user's invoices partitioned by status
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=services.InvoiceStatistics}
// @Failure 401 {object} utils.Response
// @Router /invoices/statistics [get]
func Statistics(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := services.UserStatistics(u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Statistics retrieved successfully", stats))
}

// Summary godoc
// @Summary Invoice summary
// @Description Pending and paid invoices plus statistics in a single payload
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=invoice.SummaryResponse}
// @Failure 401 {object} utils.Response
// @Router /invoices/summary [get]
func Summary(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := services.GetInvoiceSummary(u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Summary retrieved successfully", SummaryResponse{
		PendingInvoices: toInvoiceResponses(summary.PendingInvoices),
		PaidInvoices:    toInvoiceResponses(summary.PaidInvoices),
		Statistics:      summary.Statistics,
	}))
}

// Detail godoc
// @Summary Get an invoice
// @Description Full detail of a single invoice, owner only
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Param   id   path   int  true  "Invoice ID"
// @Success 200 {object} utils.Response{data=invoice.InvoiceDetailResponse}
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /invoices/{id} [get]
func Detail(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	inv, err := services.GetInvoice(id, u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	detail := InvoiceDetailResponse{
		InvoiceResponse: toInvoiceResponse(*inv),
		CanPay:          inv.IsPaymentEligible(),
		FormattedAmount: formatAmount(inv.Amount),
	}

	if inv.Status == models.InvoiceStatusPending && inv.DueDate != nil {
		days := int(time.Until(*inv.DueDate).Hours() / 24)
		detail.DaysToDue = &days
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Invoice retrieved successfully", detail))
}

// Pay godoc
// @Summary Pay an invoice
// @Description Transition a PENDING invoice to PAID, owner only
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Param   id   path   int  true  "Invoice ID"
// @Success 200 {object} utils.Response{data=invoice.PaymentResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /invoices/{id}/pay [post]
func Pay(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	paid, err := services.PayInvoice(id, u.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	number := fmt.Sprintf("%d", paid.ID)
	if paid.InvoiceNumber != nil {
		number = *paid.InvoiceNumber
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Payment registered successfully", PaymentResponse{
		Success:    true,
		Message:    fmt.Sprintf("Payment registered successfully for invoice %s", number),
		Invoice:    toInvoiceResponse(*paid),
		AmountPaid: formatAmount(paid.Amount),
		PaidAt:     paid.UpdatedAt,
	}))
}

// Create godoc
// @Summary Create an invoice
// @Description Issue a new PENDING invoice for the authenticated user
// @Tags invoice
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   input  body   CreateInvoiceInput  true  "Invoice Input"
// @Success 201 {object} utils.Response{data=invoice.InvoiceResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /invoices [post]
func Create(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	description := input.Description
	if description == "" {
		description = "Telecommunications services"
	}

	inv, err := services.CreateInvoice(u.ID, input.Amount, description, input.DueInDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Invoice created successfully", toInvoiceResponse(*inv)))
}

// CreateTest godoc
// @Summary Create a test invoice
// @Description Issue a random PENDING invoice for the authenticated user (testing aid)
// @Tags invoice
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} utils.Response{data=invoice.InvoiceResponse}
// @Failure 401 {object} utils.Response
// @Router /invoices/test [post]
func CreateTest(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	amount := 50.0 + rand.Float64()*450.0
	dueInDays := 1 + rand.Intn(30)

	inv, err := services.CreateInvoice(u.ID, amount, "Telecommunications services", dueInDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Test invoice created successfully", toInvoiceResponse(*inv)))
}
