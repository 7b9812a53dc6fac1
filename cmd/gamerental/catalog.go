package main

import (
	"net/http"
	"time"

	"gamerental/pkg/importer"
	"gamerental/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func searchGames(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title query parameter is required"})
		return
	}

	// Same normalization as import, so the substring match lines up with
	// what is actually stored.
	pattern := importer.Normalize(title)

	var copies []models.GameCopy
	if err := db.Where("title LIKE ?", "%"+pattern+"%").Find(&copies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(copies))
	for i, gc := range copies {
		var open int64
		err := db.Model(&models.RentalRecord{}).
			Where("copy_id = ? AND return_date IS NULL", gc.CopyID).
			Count(&open).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		items[i] = gin.H{
			"copyId":        gc.CopyID,
			"platform":      gc.Platform,
			"genre":         gc.Genre,
			"title":         gc.Title,
			"purchasePrice": gc.PurchasePrice,
			"purchaseDate":  gc.PurchaseDate,
			"rented":        open > 0,
		}
	}
	c.JSON(http.StatusOK, items)
}

func addGameCopies(c *gin.Context) {
	var request struct {
		Title         string  `json:"title" binding:"required"`
		Genre         string  `json:"genre" binding:"required"`
		Platform      string  `json:"platform" binding:"required"`
		Copies        int     `json:"copies" binding:"required,gt=0"`
		PurchasePrice float64 `json:"purchasePrice" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	title := importer.Normalize(request.Title)
	genre := importer.Normalize(request.Genre)
	platform := importer.Normalize(request.Platform)
	purchaseDate := time.Now().Format(dateLayout)

	// All copies commit together; a failure partway rolls everything back.
	var firstID int
	err := db.Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&models.GameCopy{}).
			Select("COALESCE(MAX(copy_id), 0)").
			Scan(&maxID).Error; err != nil {
			return err
		}
		firstID = int(maxID) + 1
		for i := 0; i < request.Copies; i++ {
			gc := models.GameCopy{
				CopyID:        firstID + i,
				Platform:      platform,
				Genre:         genre,
				Title:         title,
				PurchasePrice: request.PurchasePrice,
				PurchaseDate:  purchaseDate,
			}
			if err := tx.Create(&gc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add the game"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "game copies added",
		"title":       title,
		"copiesAdded": request.Copies,
		"firstCopyId": firstID,
		"lastCopyId":  firstID + request.Copies - 1,
	})
}

func reinitialize(c *gin.Context) {
	var request struct {
		GamesFile   string `json:"gamesFile" binding:"required"`
		RentalsFile string `json:"rentalsFile" binding:"required"`
		Strict      bool   `json:"strict"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	opts := importer.Options{Strict: request.Strict}
	if err := importer.Reinitialize(db, request.GamesFile, request.RentalsFile, opts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var games, rentals int64
	db.Model(&models.GameCopy{}).Count(&games)
	db.Model(&models.RentalRecord{}).Count(&rentals)
	c.JSON(http.StatusOK, gin.H{
		"message": "database reinitialized",
		"games":   games,
		"rentals": rentals,
	})
}
