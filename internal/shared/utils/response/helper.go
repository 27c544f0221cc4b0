package response

import (
	"gymflow/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, StandardApiResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string, details interface{}) {
	c.JSON(code, StandardApiResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// HandleError writes err using its kind. Store failures are logged and masked.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status := apperror.HTTPStatus(err)
	if apperror.KindOf(err) == apperror.KindStore && log != nil {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	RespondError(c, status, apperror.PublicMessage(err), apperror.DetailsOf(err))
}
