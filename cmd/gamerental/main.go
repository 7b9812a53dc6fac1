package main

import (
	"log"
	"net/http"
	"os"

	"gamerental/pkg/database"
	"gamerental/pkg/subscription"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var db *gorm.DB
var subsDir *subscription.Directory
var subscriptionFile string

func main() {
	log.Println("Starting game rental service...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	db = database.InitGameRentalDB()

	subscriptionFile = getEnv("SUBSCRIPTION_FILE", "Subscription_Info.txt")
	var err error
	subsDir, err = subscription.Load(subscriptionFile)
	if err != nil {
		log.Fatalf("Failed to load subscription directory: %v", err)
	}
	log.Printf("Subscription directory loaded from %s", subscriptionFile)

	server := gin.Default()
	server.POST("/api/v1/rentals", rentGame)
	server.POST("/api/v1/returns", returnGame)
	server.GET("/api/v1/rentals", getRentalHistory)
	server.GET("/api/v1/games/search", searchGames)
	server.POST("/api/v1/games", addGameCopies)
	server.GET("/api/v1/reports/popularity/titles", getTitlePopularity)
	server.GET("/api/v1/reports/popularity/genres", getGenrePopularity)
	server.GET("/api/v1/reports/purchase-recommendations", getPurchaseRecommendations)
	server.POST("/api/v1/admin/reinitialize", reinitialize)
	server.POST("/api/v1/admin/subscriptions/reload", reloadSubscriptions)
	server.GET("/manage/health", healthCheck)

	port := getEnv("APP_PORT", "8080")
	log.Printf("Game rental service starting on :%s", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func reloadSubscriptions(c *gin.Context) {
	dir, err := subscription.Load(subscriptionFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	subsDir = dir
	c.JSON(http.StatusOK, gin.H{"message": "subscription directory reloaded"})
}

func healthCheck(ctx *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": "Game rental service is active",
	})
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
