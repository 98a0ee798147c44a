package handler

import (
	"github.com/gin-gonic/gin"
	syncapp "github.com/transitledger/backend/internal/application/syncdata"
)

// SyncHandler handles manual sync trigger endpoints
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.Service) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Trigger runs a full upstream sync immediately. The run always reports 200;
// per-table failures are in the summary with Partial set.
func (h *SyncHandler) Trigger(c *gin.Context) {
	result, err := h.syncService.SyncAll(c.Request.Context(), getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
