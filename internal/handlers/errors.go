// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/localbiz/directory-backend/internal/i18n"
	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/services"
	"github.com/localbiz/directory-backend/internal/utils"
	"github.com/localbiz/directory-backend/internal/validation"
)

// respondError maps service errors onto the response envelope. resource names
// the i18n prefix used for not-found messages.
func respondError(c *gin.Context, err error, resource string) {
	lang := utils.GetLangFromContext(c)

	var notReady *lifecycle.NotReadyError
	var schemaErr *validation.SchemaError

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)

	case errors.As(err, &notReady):
		key := i18n.KeyBusinessNotReady
		if notReady.Stale {
			key = i18n.KeyBusinessStaleReadiness
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, key), gin.H{
			"missing_fields":     notReady.MissingFields,
			"unmet_requirements": notReady.UnmetRequirements,
			"stale":              notReady.Stale,
		})

	case errors.As(err, &schemaErr):
		details := make([]utils.ValidationError, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			details = append(details, utils.ValidationError{Field: fe.Field, Tag: "schema", Message: fe.Message})
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationPayload), details)

	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)

	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))

	case errors.Is(err, services.ErrPublishedReadOnly):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyBusinessPublishedReadOnly))

	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthForbidden))

	case errors.Is(err, services.ErrTerminal):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyBusinessDeleted))

	case errors.Is(err, services.ErrInvalidTransition):
		utils.ErrorResponse(c, http.StatusConflict, "CONFLICT", i18n.T(lang, i18n.KeyBusinessInvalidTransition), err.Error())

	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))

	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes and validates the request body. An empty body is accepted
// for requests whose fields are all optional.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return false
		}
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationID), nil)
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID reads the caller set by middleware.AuthRequired.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
		return uuid.Nil, false
	}
	return id, true
}

func currentActor(c *gin.Context) (lifecycle.Actor, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return lifecycle.Actor{}, false
	}
	role, _ := utils.GetUserRoleFromContext(c)
	return lifecycle.Actor{ID: id, Staff: role == string(models.UserRoleStaff)}, true
}
