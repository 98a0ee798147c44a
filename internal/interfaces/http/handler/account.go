package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/transitledger/backend/internal/application/ledger"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/interfaces/http/dto"
)

// AccountHandler handles chart of accounts endpoints
type AccountHandler struct {
	BaseHandler
	accountService *ledgerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *ledgerapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest is the request body for creating an account
type CreateAccountRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required,min=1,max=200"`
	Type          string `json:"type" binding:"required"`
	NormalBalance string `json:"normal_balance" binding:"required"`
	Description   string `json:"description"`
}

// RenameAccountRequest is the request body for renaming an account
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// List returns accounts matching the query filters
func (h *AccountHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	filter := ledger.AccountFilter{
		Search:          req.Search,
		Page:            req.Page,
		PageSize:        req.PageSize,
		IncludeArchived: c.Query("include_archived") == "true",
	}
	if raw := c.Query("type"); raw != "" {
		accountType := ledger.AccountType(raw)
		if !accountType.IsValid() {
			h.BadRequest(c, "Unknown account type: "+raw)
			return
		}
		filter.Type = &accountType
	}

	accounts, total, err := h.accountService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// Get returns one account by id
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// SuggestCode returns the next available code for an account type
func (h *AccountHandler) SuggestCode(c *gin.Context) {
	accountType := ledger.AccountType(c.Query("type"))
	if !accountType.IsValid() {
		h.BadRequest(c, "Unknown account type: "+c.Query("type"))
		return
	}

	code, err := h.accountService.SuggestCode(c.Request.Context(), accountType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"code": code})
}

// Create adds an account to the chart of accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), ledgerapp.CreateAccountRequest{
		Code:          req.Code,
		Name:          req.Name,
		Type:          ledger.AccountType(req.Type),
		NormalBalance: ledger.NormalBalance(req.NormalBalance),
		Description:   req.Description,
		Actor:         getActor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Rename changes an account's display name
func (h *AccountHandler) Rename(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}
	var req RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	account, err := h.accountService.Rename(c.Request.Context(), id, req.Name, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Archive removes an account from active use
func (h *AccountHandler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	if err := h.accountService.Archive(c.Request.Context(), id, getActor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
