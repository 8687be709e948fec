// internal/handlers/business.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/localbiz/directory-backend/internal/i18n"
	"github.com/localbiz/directory-backend/internal/services"
	"github.com/localbiz/directory-backend/internal/utils"
)

type BusinessHandler struct {
	businessService *services.BusinessService
}

func NewBusinessHandler(businessService *services.BusinessService) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
	}
}

// GET /businesses
func (h *BusinessHandler) ListPublic(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	businesses, total, err := h.businessService.ListPublic(c.Request.Context(), params, c.Query("city"))
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(businesses, total, params))
}

// GET /businesses/:id
func (h *BusinessHandler) GetPublic(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	business, err := h.businessService.GetPublic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"business": business,
	})
}

// GET /me/businesses
func (h *BusinessHandler) ListMine(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}

	businesses, err := h.businessService.ListOwned(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"businesses": businesses,
	})
}

// GET /me/businesses/:id
func (h *BusinessHandler) GetMine(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	business, err := h.businessService.GetOwned(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"business": business,
	})
}

// PUT /me/businesses/:id
func (h *BusinessHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	owner, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateBusinessRequest
	if !bindJSON(c, &req) {
		return
	}

	business, err := h.businessService.UpdateProfile(c.Request.Context(), owner, id, req)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyBusinessUpdated),
		"business": business,
	})
}

// POST /me/businesses/:id/recompute
func (h *BusinessHandler) Recompute(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	business, err := h.businessService.Recompute(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"business": business,
	})
}

// POST /me/businesses/:id/request-publish
func (h *BusinessHandler) RequestPublish(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	owner, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	business, err := h.businessService.RequestPublish(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyBusinessPublishRequested),
		"business": business,
	})
}

// GET /me/application
func (h *BusinessHandler) GetApplication(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}

	application, err := h.businessService.GetApplication(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application": application,
	})
}
