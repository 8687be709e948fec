// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/localbiz/directory-backend/internal/i18n"
	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/services"
	"github.com/localbiz/directory-backend/internal/utils"
)

type AdminHandler struct {
	moderationService *services.ModerationService
}

func NewAdminHandler(moderationService *services.ModerationService) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
	}
}

// moderationAction is one staff operation on a single listing.
type moderationAction func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error)

func (h *AdminHandler) moderate(c *gin.Context, action moderationAction) {
	lang := utils.GetLangFromContext(c)

	staff, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	business, err := action(c, staff, id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyModerationSuccess),
		"business": business,
	})
}

// GET /admin/businesses?queue=
func (h *AdminHandler) ListQueue(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)

	queue, ok := repository.ParseQueue(c.Query("queue"))
	if !ok {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationQueue), gin.H{"queues": repository.Queues})
		return
	}

	businesses, total, err := h.moderationService.ListQueue(c.Request.Context(), queue, params)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(businesses, total, params))
}

// GET /admin/businesses/:id
func (h *AdminHandler) GetBusiness(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	business, err := h.moderationService.GetBusiness(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"business": business,
	})
}

// GET /admin/businesses/:id/history
func (h *AdminHandler) History(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	events, err := h.moderationService.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"events": events,
	})
}

// GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.moderationService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"queues": stats,
	})
}

// POST /admin/businesses/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	var req services.ApproveRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Approve(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	var req services.RejectRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Reject(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/request-info
func (h *AdminHandler) RequestInfo(c *gin.Context) {
	var req services.RequestInfoRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.RequestInfo(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/unpublish
func (h *AdminHandler) Unpublish(c *gin.Context) {
	var req services.UnpublishRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Unpublish(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/archive
func (h *AdminHandler) Archive(c *gin.Context) {
	var req services.ArchiveRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Archive(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/restore
func (h *AdminHandler) Restore(c *gin.Context) {
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Restore(c.Request.Context(), staff, id)
	})
}

// POST /admin/businesses/:id/mark-duplicate
func (h *AdminHandler) MarkDuplicate(c *gin.Context) {
	var req services.MarkDuplicateRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.MarkDuplicate(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/delete
func (h *AdminHandler) Delete(c *gin.Context) {
	var req services.DeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Delete(c.Request.Context(), staff, id, req)
	})
}

// POST /admin/businesses/:id/recompute
func (h *AdminHandler) Recompute(c *gin.Context) {
	h.moderate(c, func(c *gin.Context, staff lifecycle.Actor, id uuid.UUID) (*models.Business, error) {
		return h.moderationService.Recompute(c.Request.Context(), staff, id)
	})
}
