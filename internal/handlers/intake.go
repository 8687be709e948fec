// internal/handlers/intake.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/localbiz/directory-backend/internal/i18n"
	"github.com/localbiz/directory-backend/internal/services"
	"github.com/localbiz/directory-backend/internal/utils"
)

type IntakeHandler struct {
	intakeService *services.IntakeService
}

func NewIntakeHandler(intakeService *services.IntakeService) *IntakeHandler {
	return &IntakeHandler{
		intakeService: intakeService,
	}
}

// POST /intake
// The identity token travels in the body or as a bearer header.
func (h *IntakeHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if req.Token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			req.Token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	result, err := h.intakeService.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "business")
		return
	}

	if !result.Created {
		utils.SuccessResponse(c, gin.H{
			"message":  i18n.T(lang, i18n.KeyBusinessExisting),
			"business": result.Business,
			"created":  false,
		})
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyBusinessSubmitted),
		"business": result.Business,
		"created":  true,
	})
}
