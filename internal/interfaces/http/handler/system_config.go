package handler

import (
	"github.com/gin-gonic/gin"
	revenueapp "github.com/transitledger/backend/internal/application/revenue"
	"github.com/transitledger/backend/internal/domain/revenue"
)

// SystemConfigHandler handles reconciliation configuration endpoints
type SystemConfigHandler struct {
	BaseHandler
	configService *revenueapp.SystemConfigService
}

// NewSystemConfigHandler creates a new SystemConfigHandler
func NewSystemConfigHandler(configService *revenueapp.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configService: configService}
}

// UpdateConfigRequest is the request body for updating the active
// configuration. Omitted fields keep their current values.
type UpdateConfigRequest struct {
	DriverSharePercent    *float64 `json:"driver_share_percent" binding:"omitempty,gte=0,lte=100"`
	ConductorSharePercent *float64 `json:"conductor_share_percent" binding:"omitempty,gte=0,lte=100"`
	InstallmentFrequency  *string  `json:"installment_frequency"`
	InstallmentCount      *int     `json:"installment_count" binding:"omitempty,gt=0"`
	DueDateOffsetDays     *int     `json:"due_date_offset_days" binding:"omitempty,gte=0"`
}

// Get returns the active configuration
func (h *SystemConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configService.Active(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfg)
}

// Update applies partial changes to the active configuration
func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	update := revenueapp.UpdateConfigRequest{
		DriverSharePercent:    toDecimalPtr(req.DriverSharePercent),
		ConductorSharePercent: toDecimalPtr(req.ConductorSharePercent),
		InstallmentCount:      req.InstallmentCount,
		DueDateOffsetDays:     req.DueDateOffsetDays,
		Actor:                 getActor(c),
	}
	if req.InstallmentFrequency != nil {
		frequency := revenue.PaymentFrequency(*req.InstallmentFrequency)
		if !frequency.IsValid() {
			h.BadRequest(c, "Unknown payment frequency: "+*req.InstallmentFrequency)
			return
		}
		update.InstallmentFrequency = &frequency
	}

	cfg, err := h.configService.Update(c.Request.Context(), update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfg)
}
