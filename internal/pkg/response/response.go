package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint writes. Kept as a type for swagger.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// CustomError accepts a string, an error, or a field map as the message.
// Field maps are sent as details under a generic message.
func CustomError(c *gin.Context, statusCode int, code string, message any) {
	switch v := message.(type) {
	case string:
		Error(c, statusCode, code, v)
	case map[string]string:
		ErrorWithDetails(c, statusCode, code, http.StatusText(statusCode), v)
	case error:
		if statusCode >= http.StatusInternalServerError {
			c.Error(v)
			Error(c, statusCode, code, http.StatusText(statusCode))
			return
		}
		Error(c, statusCode, code, v.Error())
	default:
		Error(c, statusCode, code, http.StatusText(statusCode))
	}
}

func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}
