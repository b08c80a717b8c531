package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodshare/backend/internal/middleware"
	"github.com/pageza/foodshare/backend/internal/service"
)

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{Errors: message})
}

// respondError maps a service error to its HTTP status. Anything
// unrecognised is logged and hidden behind a generic 500.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var validation *service.ValidationError
	var missing *service.NotFoundError

	switch {
	case errors.As(err, &validation):
		abortWithError(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, service.ErrInvalidPage):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &missing):
		abortWithError(c, http.StatusNotFound, missing.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	default:
		_ = c.Error(err)
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Unhandled error")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

func notFound(c *gin.Context) {
	abortWithError(c, http.StatusNotFound, "not found")
}

func badRequest(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, message)
}
