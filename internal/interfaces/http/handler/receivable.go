package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	revenueapp "github.com/transitledger/backend/internal/application/revenue"
	"github.com/transitledger/backend/internal/domain/revenue"
)

// ReceivableHandler handles shortage receivable and installment payment
// endpoints.
type ReceivableHandler struct {
	BaseHandler
	paymentService *revenueapp.PaymentService
}

// NewReceivableHandler creates a new ReceivableHandler
func NewReceivableHandler(paymentService *revenueapp.PaymentService) *ReceivableHandler {
	return &ReceivableHandler{paymentService: paymentService}
}

// RecordPaymentRequest is the request body for paying an installment
type RecordPaymentRequest struct {
	InstallmentID string  `json:"installment_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentDate   string  `json:"payment_date"`
	Method        string  `json:"method" binding:"required"`
	Reference     string  `json:"reference"`
}

// RegenerateScheduleRequest is the request body for replacing an unpaid
// installment schedule.
type RegenerateScheduleRequest struct {
	StartDate        string `json:"start_date" binding:"required"`
	NumberOfPayments int    `json:"number_of_payments" binding:"required,gt=0"`
	Frequency        string `json:"frequency" binding:"required"`
}

// Get returns one receivable with its schedule
func (h *ReceivableHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receivable ID format")
		return
	}

	rcv, err := h.paymentService.GetReceivable(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rcv)
}

// ListPayments returns the payment history of a receivable
func (h *ReceivableHandler) ListPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receivable ID format")
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecordPayment applies a cascade payment starting at one installment
func (h *ReceivableHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	installmentID, err := uuid.Parse(req.InstallmentID)
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}
	method := revenue.PaymentMethod(req.Method)
	if !method.IsValid() {
		h.BadRequest(c, "Unknown payment method: "+req.Method)
		return
	}
	paymentDate, err := parseDatePtr(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment_date, expected YYYY-MM-DD")
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), revenueapp.RecordPaymentRequest{
		InstallmentID: installmentID,
		Amount:        toDecimal(req.Amount),
		PaymentDate:   paymentDate,
		Method:        method,
		Reference:     req.Reference,
		Actor:         getActor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RegenerateSchedule replaces a receivable's unpaid installment schedule
func (h *ReceivableHandler) RegenerateSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receivable ID format")
		return
	}
	var req RegenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	frequency := revenue.PaymentFrequency(req.Frequency)
	if !frequency.IsValid() {
		h.BadRequest(c, "Unknown payment frequency: "+req.Frequency)
		return
	}

	rcv, err := h.paymentService.RegenerateSchedule(c.Request.Context(), id,
		startDate, req.NumberOfPayments, frequency, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rcv)
}
