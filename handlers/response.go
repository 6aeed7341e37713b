package handlers

import (
	"net/http"

	"glaw-backend/models"

	"github.com/gin-gonic/gin"
)

// Envelope codes
const (
	CodeOK         = "COMMON200"
	CodeBadRequest = "COMMON400"
	CodeNotFound   = "COMMON404"
	CodeInternal   = "COMMON500"
)

const (
	messageOK       = "Request succeeded."
	messageInternal = "An internal error occurred. Please try again later."
)

// respondOK writes a successful envelope. An empty message uses the default.
func respondOK(c *gin.Context, message string, result interface{}) {
	if message == "" {
		message = messageOK
	}
	c.JSON(http.StatusOK, models.CommonResponse{
		IsSuccess: true,
		Code:      CodeOK,
		Message:   message,
		Result:    result,
	})
}

// respondError writes a failed envelope with a nil result
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.CommonResponse{
		IsSuccess: false,
		Code:      code,
		Message:   message,
		Result:    nil,
	})
}
