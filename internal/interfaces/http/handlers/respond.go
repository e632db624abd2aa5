// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/toycart-backend/internal/pkg/apperrors"
)

// respondSuccess writes the standard success envelope
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError translates a service error into the standard error
// envelope. Unexpected errors are logged and masked.
func respondError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)

	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
			"method":     c.Request.Method,
		}).WithError(err).Error("request failed")
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": apperrors.UserMessage(err),
	})
}

// respondBindError reports a malformed request body or query string
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid request data",
		"details": err.Error(),
	})
}

// parseIDParam extracts a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
