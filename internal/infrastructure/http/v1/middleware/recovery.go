// Package middleware holds the gin middleware of the ledger API: request
// tracing, logging, company resolution and error rendering.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/apperror"
	"pgcledger/pkg/logger"
)

// Recovery turns a panic into a 500 rendered by ErrorHandler. A panic
// inside a posting has already rolled back its transaction; the stack goes
// to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"route", c.FullPath(),
					"stack", string(debug.Stack()),
				)
				_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}
