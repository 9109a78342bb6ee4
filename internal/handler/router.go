package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"expense-tracker/internal/middleware"
)

// NewRouter builds the gin engine with middleware, /health and the expense
// API.
func NewRouter(svc ExpenseService, maxUploadBytes int64, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	NewExpenseHandler(svc, maxUploadBytes, log).RegisterRoutes(router)
	return router
}
