package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	revenueapp "github.com/transitledger/backend/internal/application/revenue"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"github.com/transitledger/backend/internal/interfaces/http/dto"
)

// TripRevenueHandler handles trip revenue reconciliation endpoints
type TripRevenueHandler struct {
	BaseHandler
	revenueService *revenueapp.TripRevenueService
}

// NewTripRevenueHandler creates a new TripRevenueHandler
func NewTripRevenueHandler(revenueService *revenueapp.TripRevenueService) *TripRevenueHandler {
	return &TripRevenueHandler{revenueService: revenueService}
}

// CreateRevenueRequest is the request body for recording one trip's revenue
type CreateRevenueRequest struct {
	AssignmentID   int64    `json:"assignment_id" binding:"required,gt=0"`
	BusTripID      int64    `json:"bus_trip_id" binding:"required,gt=0"`
	AmountRemitted *float64 `json:"amount_remitted" binding:"omitempty,gte=0"`
	RevenueDate    string   `json:"revenue_date"`
	PaymentMethod  string   `json:"payment_method"`
	Description    string   `json:"description"`
}

// UpdateRevenueRequest is the request body for amending a recorded revenue
type UpdateRevenueRequest struct {
	AmountRemitted *float64 `json:"amount_remitted" binding:"omitempty,gte=0"`
	Description    *string  `json:"description"`
	RevenueDate    *string  `json:"revenue_date"`
}

// ListUnrecordedTrips returns cached trips with no revenue recorded yet
func (h *TripRevenueHandler) ListUnrecordedTrips(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	trips, total, err := h.revenueService.ListUnrecorded(c.Request.Context(), syncdata.TripFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, trips, total, req.Page, req.PageSize)
}

// List returns revenue records matching the query filters
func (h *TripRevenueHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	filter := revenue.RevenueFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if raw := c.Query("assignment_type"); raw != "" {
		assignmentType := revenue.AssignmentType(raw)
		if !assignmentType.IsValid() {
			h.BadRequest(c, "Unknown assignment type: "+raw)
			return
		}
		filter.AssignmentType = &assignmentType
	}
	if raw := c.Query("status"); raw != "" {
		status := revenue.RemittanceStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown remittance status: "+raw)
			return
		}
		filter.Status = &status
	}
	var err error
	if filter.DateFrom, err = parseDatePtr(c.Query("date_from")); err != nil {
		h.BadRequest(c, "Invalid date_from, expected YYYY-MM-DD")
		return
	}
	if filter.DateTo, err = parseDatePtr(c.Query("date_to")); err != nil {
		h.BadRequest(c, "Invalid date_to, expected YYYY-MM-DD")
		return
	}

	revenues, total, err := h.revenueService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, revenues, total, filter.Page, filter.PageSize)
}

// Get returns one revenue record
func (h *TripRevenueHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid revenue ID format")
		return
	}

	rev, err := h.revenueService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rev)
}

// Create reconciles one cached trip into a revenue record
func (h *TripRevenueHandler) Create(c *gin.Context) {
	var req CreateRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	create := revenueapp.CreateRevenueRequest{
		AssignmentID:   req.AssignmentID,
		BusTripID:      req.BusTripID,
		AmountRemitted: toDecimalPtr(req.AmountRemitted),
		Description:    req.Description,
		Actor:          getActor(c),
	}
	revenueDate, err := parseDatePtr(req.RevenueDate)
	if err != nil {
		h.BadRequest(c, "Invalid revenue_date, expected YYYY-MM-DD")
		return
	}
	create.RevenueDate = revenueDate
	if req.PaymentMethod != "" {
		method := revenue.PaymentMethod(req.PaymentMethod)
		if !method.IsValid() {
			h.BadRequest(c, "Unknown payment method: "+req.PaymentMethod)
			return
		}
		create.PaymentMethod = &method
	}

	rev, err := h.revenueService.CreateForTrip(c.Request.Context(), create)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rev)
}

// ProcessAll reconciles every unrecorded trip in one batch. The run itself
// always reports 200; per-trip failures are in the summary.
func (h *TripRevenueHandler) ProcessAll(c *gin.Context) {
	result, err := h.revenueService.ProcessAllUnrecorded(c.Request.Context(), getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Update amends a recorded revenue
func (h *TripRevenueHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid revenue ID format")
		return
	}
	var req UpdateRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	update := revenueapp.UpdateRevenueRequest{
		AmountRemitted: toDecimalPtr(req.AmountRemitted),
		Description:    req.Description,
		Actor:          getActor(c),
	}
	if req.RevenueDate != nil {
		revenueDate, err := parseDate(*req.RevenueDate)
		if err != nil {
			h.BadRequest(c, "Invalid revenue_date, expected YYYY-MM-DD")
			return
		}
		update.RevenueDate = &revenueDate
	}

	rev, err := h.revenueService.Update(c.Request.Context(), id, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rev)
}
