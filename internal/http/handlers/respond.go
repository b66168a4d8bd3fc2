package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every response is wrapped in the same envelope:
// {success, data} | {success, message} | {success, errors}.

func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": true,
		"message": message,
	})
}

func RespondDataMessage(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// field-keyed validation failures, status 422
func RespondValidationErrors(ctx *gin.Context, errs map[string][]string) {
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"errors":  errs,
	})
}

func RespondErrorMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondErrorMessage(ctx, http.StatusBadRequest, message)
}

func RespondUnauthenticated(ctx *gin.Context, message string) {
	RespondErrorMessage(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondErrorMessage(ctx, http.StatusForbidden, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondErrorMessage(ctx, http.StatusNotFound, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondErrorMessage(ctx, http.StatusInternalServerError, message)
}
