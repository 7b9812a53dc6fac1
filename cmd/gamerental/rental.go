package main

import (
	"errors"
	"net/http"
	"time"

	"gamerental/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "02/01/2006"

var errCopyUnavailable = errors.New("copy is not available")

func rentGame(c *gin.Context) {
	customerID := c.GetHeader("X-Customer-Id")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Customer-Id header is required"})
		return
	}

	var request struct {
		CopyID int `json:"copyId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if !subsDir.IsActive(customerID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "customer subscription is not active"})
		return
	}

	var openCount int64
	err := db.Model(&models.RentalRecord{}).
		Where("customer_id = ? AND return_date IS NULL", customerID).
		Count(&openCount).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if openCount >= int64(subsDir.RentalLimit(customerID)) {
		c.JSON(http.StatusForbidden, gin.H{"message": "rental limit reached"})
		return
	}

	// Availability check and insert share a transaction so two renters
	// cannot both slip past the check for the same copy.
	var record models.RentalRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		available, err := isCopyAvailable(tx, request.CopyID)
		if err != nil {
			return err
		}
		if !available {
			return errCopyUnavailable
		}
		record = models.RentalRecord{
			RentalUID:  uuid.New().String(),
			CopyID:     request.CopyID,
			RentalDate: time.Now().Format(dateLayout),
			CustomerID: customerID,
		}
		return tx.Create(&record).Error
	})
	if errors.Is(err, errCopyUnavailable) {
		c.JSON(http.StatusConflict, gin.H{"message": "game is not available for rent"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "game rented successfully",
		"rentalUid":  record.RentalUID,
		"copyId":     record.CopyID,
		"rentalDate": record.RentalDate,
	})
}

// isCopyAvailable reports whether the copy exists in the catalogue and has
// no open rental. A copy that does not exist and a copy that is out both
// count as unavailable.
func isCopyAvailable(tx *gorm.DB, copyID int) (bool, error) {
	var exists int64
	if err := tx.Model(&models.GameCopy{}).Where("copy_id = ?", copyID).Count(&exists).Error; err != nil {
		return false, err
	}
	if exists == 0 {
		return false, nil
	}
	var open int64
	if err := tx.Model(&models.RentalRecord{}).
		Where("copy_id = ? AND return_date IS NULL", copyID).
		Count(&open).Error; err != nil {
		return false, err
	}
	return open == 0, nil
}

func returnGame(c *gin.Context) {
	customerID := c.GetHeader("X-Customer-Id")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Customer-Id header is required"})
		return
	}

	var request struct {
		CopyID int `json:"copyId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var open int64
	err := db.Model(&models.RentalRecord{}).
		Where("copy_id = ? AND customer_id = ? AND return_date IS NULL", request.CopyID, customerID).
		Count(&open).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if open == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "game is not rented by this customer"})
		return
	}

	// Stamps every open record for this (copy, customer) pairing. Normally
	// that is exactly one row; if the one-open-per-copy invariant was ever
	// violated upstream, all matches get closed.
	today := time.Now().Format(dateLayout)
	err = db.Model(&models.RentalRecord{}).
		Where("copy_id = ? AND customer_id = ? AND return_date IS NULL", request.CopyID, customerID).
		Update("return_date", today).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "game returned successfully",
		"copyId":     request.CopyID,
		"returnDate": today,
	})
}

func getRentalHistory(c *gin.Context) {
	query := db
	if customer := c.Query("customer"); customer != "" {
		query = db.Where("customer_id = ?", customer)
	}

	var records []models.RentalRecord
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(records))
	for i, rec := range records {
		items[i] = gin.H{
			"rentalUid":  rec.RentalUID,
			"copyId":     rec.CopyID,
			"rentalDate": rec.RentalDate,
			"returnDate": rec.ReturnDate,
			"customerId": rec.CustomerID,
		}
	}
	c.JSON(http.StatusOK, items)
}
