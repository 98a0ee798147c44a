package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/transitledger/backend/internal/application/ledger"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/interfaces/http/dto"
)

// JournalEntryHandler handles journal entry endpoints
type JournalEntryHandler struct {
	BaseHandler
	entryService *ledgerapp.JournalEntryService
}

// NewJournalEntryHandler creates a new JournalEntryHandler
func NewJournalEntryHandler(entryService *ledgerapp.JournalEntryService) *JournalEntryHandler {
	return &JournalEntryHandler{entryService: entryService}
}

// EntryLineRequest is one requested debit or credit line
type EntryLineRequest struct {
	AccountCode string  `json:"account_code" binding:"required"`
	Debit       float64 `json:"debit" binding:"min=0"`
	Credit      float64 `json:"credit" binding:"min=0"`
	Memo        string  `json:"memo"`
}

// CreateEntryRequest is the request body for creating a journal entry
type CreateEntryRequest struct {
	EntryDate       string             `json:"entry_date" binding:"required"`
	SourceModule    string             `json:"source_module"`
	SourceReference string             `json:"source_reference"`
	Description     string             `json:"description" binding:"required,min=1,max=500"`
	Lines           []EntryLineRequest `json:"lines" binding:"required,min=2"`
}

// UpdateEntryRequest is the request body for updating a DRAFT entry
type UpdateEntryRequest struct {
	EntryDate   *string            `json:"entry_date"`
	Description *string            `json:"description"`
	Lines       []EntryLineRequest `json:"lines"`
}

// ReverseEntryRequest is the request body for reversing a POSTED entry
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

func toLineInputs(lines []EntryLineRequest) []ledgerapp.EntryLineInput {
	inputs := make([]ledgerapp.EntryLineInput, len(lines))
	for i, l := range lines {
		inputs[i] = ledgerapp.EntryLineInput{
			AccountCode: l.AccountCode,
			Debit:       toDecimal(l.Debit),
			Credit:      toDecimal(l.Credit),
			Memo:        l.Memo,
		}
	}
	return inputs
}

// List returns journal entries matching the query filters
func (h *JournalEntryHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	filter := ledger.JournalEntryFilter{
		SourceModule: c.Query("source_module"),
		Search:       req.Search,
		Page:         req.Page,
		PageSize:     req.PageSize,
		OrderBy:      req.OrderBy,
		OrderDir:     req.OrderDir,
	}
	if raw := c.Query("status"); raw != "" {
		status := ledger.JournalEntryStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown entry status: "+raw)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("entry_type"); raw != "" {
		entryType := ledger.JournalEntryType(raw)
		if !entryType.IsValid() {
			h.BadRequest(c, "Unknown entry type: "+raw)
			return
		}
		filter.EntryType = &entryType
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

	entries, total, err := h.entryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Get returns one journal entry with its lines
func (h *JournalEntryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.entryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Create creates a new DRAFT journal entry
func (h *JournalEntryHandler) Create(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		h.BadRequest(c, "Invalid entry_date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.entryService.Create(c.Request.Context(), ledgerapp.CreateEntryRequest{
		EntryDate:       entryDate,
		SourceModule:    req.SourceModule,
		SourceReference: req.SourceReference,
		Description:     req.Description,
		EntryType:       ledger.EntryTypeManual,
		Lines:           toLineInputs(req.Lines),
		Actor:           getActor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Update replaces the mutable fields of a DRAFT entry
func (h *JournalEntryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}
	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	update := ledgerapp.UpdateEntryRequest{
		Description: req.Description,
		Lines:       toLineInputs(req.Lines),
		Actor:       getActor(c),
	}
	if req.EntryDate != nil {
		entryDate, err := parseDate(*req.EntryDate)
		if err != nil {
			h.BadRequest(c, "Invalid entry_date, expected YYYY-MM-DD")
			return
		}
		update.EntryDate = &entryDate
	}

	entry, err := h.entryService.Update(c.Request.Context(), id, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete soft deletes a DRAFT entry
func (h *JournalEntryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), id, getActor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Post transitions a DRAFT entry to POSTED
func (h *JournalEntryHandler) Post(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.entryService.Post(c.Request.Context(), id, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Adjust creates a correcting entry for a POSTED original
func (h *JournalEntryHandler) Adjust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		h.BadRequest(c, "Invalid entry_date, expected YYYY-MM-DD")
		return
	}

	adjustment, err := h.entryService.CreateAdjustment(c.Request.Context(), id, ledgerapp.CreateEntryRequest{
		EntryDate:   entryDate,
		Description: req.Description,
		Lines:       toLineInputs(req.Lines),
		Actor:       getActor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, adjustment)
}

// Reverse creates the mirror entry of a POSTED original
func (h *JournalEntryHandler) Reverse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}
	var req ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	reversal, err := h.entryService.CreateReversal(c.Request.Context(), id, req.Reason, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reversal)
}
