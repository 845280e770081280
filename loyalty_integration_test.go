package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-loyalty/models"
	"github.com/yeremiapane/table-loyalty/router"
	"github.com/yeremiapane/table-loyalty/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndLoyaltyFlow walks the main flow over real routes and
// middleware:
// 1. admin logs in -> token
// 2. admin provisions a table
// 3. cashier awards points through the scanned QR
// 4. public leaderboard shows the table with its medal
// 5. cashier redeems part of the balance
// 6. admin resets the table and the history shows all three entries
func TestEndToEndLoyaltyFlow(t *testing.T) {
	db := setupIntegrationDB()
	r := router.SetupRouter(db, 1000)

	seedIntegrationUser(db, "boss@example.com", models.RoleAdmin)
	seedIntegrationUser(db, "till@example.com", models.RoleCashier)

	adminToken := login(t, r, "boss@example.com")
	cashierToken := login(t, r, "till@example.com")

	// Provision a table.
	w := request(t, r, "POST", "/api/tables", adminToken, map[string]interface{}{
		"table_number": 7,
		"name":         "Lucky Seven",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	created := dataOf(t, w)
	tableID := uint(created["id"].(float64))
	assert.Equal(t, "TABLE_7", created["qr_code"])

	// Renaming is admin-only.
	w = request(t, r, "PUT", fmt.Sprintf("/api/tables/%d/name", tableID), cashierToken, map[string]string{
		"name": "Till's Table",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(t, r, "PUT", fmt.Sprintf("/api/tables/%d/name", tableID), adminToken, map[string]string{
		"name": "Lucky No. 7",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lucky No. 7", dataOf(t, w)["name"])

	// Cashier awards points via the QR code.
	w = request(t, r, "POST", "/api/points/add", cashierToken, map[string]interface{}{
		"qr_code": "table_7",
		"points":  120,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Public leaderboard ranks the table first with the gold medal.
	w = request(t, r, "GET", "/api/tables/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	entries := dataOf(t, w)["entries"].([]interface{})
	assert.Len(t, entries, 1)
	top := entries[0].(map[string]interface{})
	assert.Equal(t, float64(120), top["points"])
	assert.Equal(t, "🥇", top["medal"])

	// Redeem part of the balance.
	w = request(t, r, "POST", "/api/points/redeem", cashierToken, map[string]interface{}{
		"qr_code": "TABLE_7",
		"points":  20,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	table := dataOf(t, w)["table"].(map[string]interface{})
	assert.Equal(t, float64(100), table["points"])

	// Cashiers cannot reset; admins can.
	w = request(t, r, "POST", fmt.Sprintf("/api/points/reset/%d", tableID), cashierToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(t, r, "POST", fmt.Sprintf("/api/points/reset/%d", tableID), adminToken, map[string]string{
		"reason": "integration check",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Full history: earn, redeem, adjustment — newest first.
	w = request(t, r, "GET", fmt.Sprintf("/api/tables/%d/history", tableID), cashierToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	history := dataOf(t, w)["transactions"].([]interface{})
	assert.Len(t, history, 3)
	types := []string{}
	for _, raw := range history {
		types = append(types, raw.(map[string]interface{})["type"].(string))
	}
	assert.Equal(t, []string{"ADJUSTMENT", "REDEEMED", "EARNED"}, types)

	// The table itself is back to zero.
	w = request(t, r, "GET", fmt.Sprintf("/api/tables/%d", tableID), cashierToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), dataOf(t, w)["points"])
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Table{}, &models.PointTransaction{})
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedIntegrationUser(db *gorm.DB, email, role string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     role,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	})
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := request(t, r, "POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	return dataOf(t, w)["token"].(string)
}

func request(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]interface{})
	assert.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}
