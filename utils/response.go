package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/logger"
	"github.com/sirupsen/logrus"
)

// RespondError writes err as the standard error envelope. Internal and upstream
// causes are logged with request context and never returned to the caller.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	status := HTTPStatus(appErr.Kind)
	message := appErr.Message

	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"kind":   appErr.Kind,
		"status": status,
	}
	if userID, ok := c.Get("user_id"); ok {
		fields["user_id"] = userID
	}

	switch appErr.Kind {
	case KindInternal:
		logger.ErrorLogger.WithFields(fields).Errorf("Request failed: %v", err)
		message = "internal server error"
	case KindUpstreamPayment:
		logger.ErrorLogger.WithFields(fields).Errorf("Payment processor call failed: %v", err)
	default:
		logger.WarnLogger.WithFields(fields).Warnf("Request rejected: %s", appErr.Message)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Kind,
			"message": message,
		},
	})
}

// RespondOK writes the standard success envelope.
func RespondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
