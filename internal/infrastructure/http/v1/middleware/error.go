package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/infrastructure/http/v1/dto"
	"pgcledger/pkg/logger"
)

// ErrorHandler renders the last handler error as a dto.ErrorResponse.
// Ledger rejections (unbalanced entry, account with postings, closed
// document) keep their code and details; anything that is not an
// AppError becomes a 500 carrying only the request ID.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()
		err := c.Errors.Last().Err

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(ctx, "unhandled error", "error", err)
			appErr = apperror.NewInternal(err)
		}

		switch {
		case appErr.HTTPStatus >= http.StatusInternalServerError:
			logger.Error(ctx, "request failed", "code", appErr.Code, "cause", appErr.Err)
		case appErr.Err != nil:
			logger.Debug(ctx, "request rejected", "code", appErr.Code, "cause", appErr.Err)
		}

		resp := dto.ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			resp.Message = "Internal server error"
			resp.Details = map[string]any{"request_id": c.GetString("request_id")}
		}
		c.JSON(appErr.HTTPStatus, resp)
	}
}
