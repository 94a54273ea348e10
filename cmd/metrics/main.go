// The metrics binary is a stateless reporting sidecar. It connects to the
// same store as the main API (postgres, or the sqlite file used in
// development) and serves per-category stock aggregates. It has no write
// path and stays healthy even when the store is unreachable.
package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/db"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/logger"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/reporting"
)

func main() {
	if err := logger.Init(os.Getenv("ENVIRONMENT")); err != nil {
		panic(err)
	}

	var storeDB *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL == "" {
		zap.L().Warn("DATABASE_URL is not set, metrics will be empty")
	} else {
		opened, err := db.OpenWithURL(dbURL)
		if err != nil {
			zap.L().Warn("failed to connect to the store, metrics will be empty", zap.Error(err))
		} else {
			storeDB = opened
		}
	}

	reader := reporting.NewReader(storeDB)

	router := gin.Default()
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics/sweets", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, reader.CategoryMetrics(ctx.Request.Context()))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}

	zap.L().Info("starting metrics server at :" + port)
	if err := router.Run(":" + port); err != nil {
		panic(err)
	}
}
