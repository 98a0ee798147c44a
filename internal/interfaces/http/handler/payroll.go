package handler

import (
	"github.com/gin-gonic/gin"
	payrollapp "github.com/transitledger/backend/internal/application/payroll"
)

// PayrollHandler handles payroll computation endpoints
type PayrollHandler struct {
	BaseHandler
	payrollService *payrollapp.Service
}

// NewPayrollHandler creates a new PayrollHandler
func NewPayrollHandler(payrollService *payrollapp.Service) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService}
}

// RunPayrollRequest is the request body for a payroll run
type RunPayrollRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// Run computes payroll for every employee in the period
func (h *PayrollHandler) Run(c *gin.Context) {
	var req RunPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		h.BadRequest(c, "Invalid period_start, expected YYYY-MM-DD")
		return
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		h.BadRequest(c, "Invalid period_end, expected YYYY-MM-DD")
		return
	}

	result, err := h.payrollService.Run(c.Request.Context(), periodStart, periodEnd, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListByPeriod returns the stored payroll records for a period
func (h *PayrollHandler) ListByPeriod(c *gin.Context) {
	periodStart, err := parseDate(c.Query("period_start"))
	if err != nil {
		h.BadRequest(c, "Invalid period_start, expected YYYY-MM-DD")
		return
	}
	periodEnd, err := parseDate(c.Query("period_end"))
	if err != nil {
		h.BadRequest(c, "Invalid period_end, expected YYYY-MM-DD")
		return
	}

	records, err := h.payrollService.ListByPeriod(c.Request.Context(), periodStart, periodEnd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}
