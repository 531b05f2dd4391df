package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
	"luxe-storefront/internal/service/identity"
)

func errorBody(msg string) gin.H {
	return gin.H{"message": msg}
}

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, logger zerolog.Logger, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Message, "field": ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, errorBody(err.Error()))
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusConflict, errorBody(err.Error()))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}
