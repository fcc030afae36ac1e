package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"opsdash-backend/middleware"
	"opsdash-backend/models"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const invalidInput = "Invalid input data"

// respondError maps a service error onto the HTTP taxonomy. Unexpected errors are
// logged with their cause and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var nf *models.NotFoundError
	switch {
	case errors.As(err, &nf):
		utils.JSONError(c, http.StatusNotFound, utils.KindNotFound, nf.Error())
	case errors.Is(err, models.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, utils.KindNotFound, "Not found")
	case errors.Is(err, models.ErrValidation):
		utils.JSONErrorDetails(c, http.StatusBadRequest, utils.KindValidation, invalidInput, err.Error())
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrBookingCancelled):
		utils.JSONErrorDetails(c, http.StatusConflict, utils.KindInvalidTransition, "Invalid status transition", err.Error())
	case errors.Is(err, models.ErrCapacityExceeded), errors.Is(err, models.ErrConflict):
		utils.JSONErrorDetails(c, http.StatusConflict, utils.KindConflict, "Conflict", err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		utils.JSONError(c, http.StatusUnauthorized, utils.KindUnauthorized, "Invalid credentials")
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		utils.JSONError(c, http.StatusInternalServerError, utils.KindInternal, "Internal server error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, utils.KindValidation, invalidInput, utils.DescribeBindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		utils.JSONErrorDetails(c, http.StatusBadRequest, utils.KindValidation, invalidInput, utils.DescribeBindingError(err))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONErrorDetails(c, http.StatusBadRequest, utils.KindValidation, invalidInput, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// tenant reads the id injected by the auth middleware.
func tenant(c *gin.Context) (uint, bool) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, utils.KindUnauthorized, "Authentication required")
	}
	return uid, ok
}
