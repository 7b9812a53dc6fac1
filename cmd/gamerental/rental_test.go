package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamerental/pkg/models"
	"gamerental/pkg/subscription"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}
	db.AutoMigrate(&models.GameCopy{}, &models.RentalRecord{})
	return db
}

// basic tier allows 2 open rentals, premium 10.
func setupTestSubscriptions() {
	subsDir = subscription.NewDirectory([]subscription.Entry{
		{CustomerID: "1234", Tier: "basic", Status: "active"},
		{CustomerID: "5678", Tier: "premium", Status: "active"},
		{CustomerID: "9999", Tier: "basic", Status: "expired"},
	})
}

func postJSON(path string, body map[string]interface{}, customerID string) (*httptest.ResponseRecorder, *gin.Context) {
	jsonBody, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	c.Request.Header.Set("Content-Type", "application/json")
	if customerID != "" {
		c.Request.Header.Set("X-Customer-Id", customerID)
	}
	return w, c
}

func openRentalRecord(copyID int, customerID string) *models.RentalRecord {
	return &models.RentalRecord{
		RentalUID:  uuid.New().String(),
		CopyID:     copyID,
		RentalDate: "01/01/2024",
		CustomerID: customerID,
	}
}

func TestRentGame(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Platform: "ps5", Genre: "action", Title: "halo", PurchasePrice: 59.99})

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "1234")
	rentGame(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "game rented successfully", response["message"])
	assert.NotEmpty(t, response["rentalUid"])

	var record models.RentalRecord
	err := testDB.Where("copy_id = ? AND customer_id = ?", 1, "1234").First(&record).Error
	assert.NoError(t, err)
	assert.Nil(t, record.ReturnDate)
}

func TestRentGameMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	setupTestSubscriptions()

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "")
	rentGame(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRentGameInactiveSubscription(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "9999")
	rentGame(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "customer subscription is not active", response["message"])
}

func TestRentGameUnknownCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	setupTestSubscriptions()

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "nobody")
	rentGame(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRentGameNonexistentCopy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	setupTestSubscriptions()

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 42}, "1234")
	rentGame(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "game is not available for rent", response["message"])
}

func TestRentGameCopyAlreadyRented(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "1234")
	rentGame(c)
	assert.Equal(t, http.StatusOK, w.Code)

	// Second rent of the same copy must be rejected, keeping at most one
	// open record per copy.
	w, c = postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "5678")
	rentGame(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	var open int64
	testDB.Model(&models.RentalRecord{}).Where("copy_id = ? AND return_date IS NULL", 1).Count(&open)
	assert.Equal(t, int64(1), open)
}

func TestRentGameLimitReached(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})
	testDB.Create(&models.GameCopy{CopyID: 2, Title: "zelda"})
	testDB.Create(&models.GameCopy{CopyID: 3, Title: "mario"})
	testDB.Create(openRentalRecord(1, "1234"))
	testDB.Create(openRentalRecord(2, "1234"))

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 3}, "1234")
	rentGame(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "rental limit reached", response["message"])
}

func TestRentGameUnderLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})
	testDB.Create(&models.GameCopy{CopyID: 2, Title: "zelda"})
	testDB.Create(openRentalRecord(1, "1234"))

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 2}, "1234")
	rentGame(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReturnGame(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})
	testDB.Create(openRentalRecord(1, "1234"))

	w, c := postJSON("/api/v1/returns", map[string]interface{}{"copyId": 1}, "1234")
	returnGame(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "game returned successfully", response["message"])

	var record models.RentalRecord
	testDB.Where("copy_id = ? AND customer_id = ?", 1, "1234").First(&record)
	assert.NotNil(t, record.ReturnDate)
}

func TestReturnGameNotRented(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})

	w, c := postJSON("/api/v1/returns", map[string]interface{}{"copyId": 1}, "1234")
	returnGame(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "game is not rented by this customer", response["message"])
}

func TestReturnGameWrongCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})
	testDB.Create(openRentalRecord(1, "1234"))

	w, c := postJSON("/api/v1/returns", map[string]interface{}{"copyId": 1}, "5678")
	returnGame(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRentReturnRentAgain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB
	setupTestSubscriptions()

	testDB.Create(&models.GameCopy{CopyID: 1, Title: "halo"})

	w, c := postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "1234")
	rentGame(c)
	assert.Equal(t, http.StatusOK, w.Code)

	w, c = postJSON("/api/v1/returns", map[string]interface{}{"copyId": 1}, "1234")
	returnGame(c)
	assert.Equal(t, http.StatusOK, w.Code)

	// Returned copy is available again, even to another customer.
	w, c = postJSON("/api/v1/rentals", map[string]interface{}{"copyId": 1}, "5678")
	rentGame(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRentalHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB

	testDB.Create(openRentalRecord(1, "1234"))
	testDB.Create(openRentalRecord(2, "5678"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/rentals", nil)

	getRentalHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 2, len(response))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/rentals?customer=1234", nil)

	getRentalHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 1, len(response))
	assert.Equal(t, "1234", response[0]["customerId"])
}
