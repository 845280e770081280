package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-loyalty/services"
	"github.com/yeremiapane/table-loyalty/utils"
)

// respondServiceError translates the service error taxonomy into HTTP
// status codes. Anything unrecognized is a 500.
func respondServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		insufficientE *services.InsufficientBalanceError
	)

	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrDuplicateTable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.As(err, &validationErr):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &insufficientE):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("internal error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// actorID pulls the authenticated user id set by the auth middleware.
func actorID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
