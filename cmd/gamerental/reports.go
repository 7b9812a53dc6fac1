package main

import (
	"net/http"
	"strconv"

	"gamerental/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type titlePopularity struct {
	Title      string
	Genre      string
	Popularity int
}

type genrePopularity struct {
	Genre      string
	Popularity int
}

// titlePopularityRows counts rental records per (title, genre) group. The
// outer join keeps never-rented titles in the result with popularity 0.
func titlePopularityRows(db *gorm.DB) ([]titlePopularity, error) {
	var rows []titlePopularity
	err := db.Model(&models.GameCopy{}).
		Select("game_copies.title AS title, game_copies.genre AS genre, COUNT(rental_records.id) AS popularity").
		Joins("LEFT JOIN rental_records ON rental_records.copy_id = game_copies.copy_id").
		Group("game_copies.title, game_copies.genre").
		Order("popularity DESC").
		Scan(&rows).Error
	return rows, err
}

func getTitlePopularity(c *gin.Context) {
	rows, err := titlePopularityRows(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(rows))
	for i, row := range rows {
		items[i] = gin.H{
			"title":      row.Title,
			"genre":      row.Genre,
			"popularity": row.Popularity,
		}
	}
	c.JSON(http.StatusOK, items)
}

func getGenrePopularity(c *gin.Context) {
	var rows []genrePopularity
	err := db.Model(&models.GameCopy{}).
		Select("game_copies.genre AS genre, COUNT(rental_records.id) AS popularity").
		Joins("LEFT JOIN rental_records ON rental_records.copy_id = game_copies.copy_id").
		Group("game_copies.genre").
		Order("popularity DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(rows))
	for i, row := range rows {
		items[i] = gin.H{
			"genre":      row.Genre,
			"popularity": row.Popularity,
		}
	}
	c.JSON(http.StatusOK, items)
}

func getPurchaseRecommendations(c *gin.Context) {
	budget, err := strconv.ParseFloat(c.Query("budget"), 64)
	if err != nil || budget <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "budget query parameter must be a positive number"})
		return
	}

	rows, err := titlePopularityRows(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total := 0
	for _, row := range rows {
		total += row.Popularity
	}

	items := make([]gin.H, 0, len(rows))
	if total == 0 {
		// Nothing was ever rented; the allocation is undefined.
		c.JSON(http.StatusOK, items)
		return
	}

	for _, row := range rows {
		proportion := float64(row.Popularity) / float64(total)
		allocated := proportion * budget
		price := purchasePriceForTitle(db, row.Title)
		copies := 0
		if price > 0 {
			copies = int(allocated / price)
		}
		items = append(items, gin.H{
			"title":         row.Title,
			"genre":         row.Genre,
			"purchasePrice": price,
			"copiesToBuy":   copies,
		})
	}
	c.JSON(http.StatusOK, items)
}

// purchasePriceForTitle picks the price of the first catalogue row matching
// the title. Duplicate titles are common (every copy is its own row), so
// which row wins is arbitrary. Unresolvable titles price at 0.
func purchasePriceForTitle(db *gorm.DB, title string) float64 {
	var gc models.GameCopy
	if err := db.Where("title = ?", title).First(&gc).Error; err != nil {
		return 0
	}
	return gc.PurchasePrice
}
