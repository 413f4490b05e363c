package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-wallet-system/models"
	"crypto-wallet-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.WalletUser{},
		&models.TokenConfig{},
		&models.TokenPrice{},
		&models.DepositRequest{},
		&models.Transaction{},
		&models.UserBalance{},
		&models.ReferralEarning{},
	))

	tokens := services.NewTokenService(db)
	referrals := services.NewReferralService(db)
	deposits := services.NewDepositService(db, tokens, referrals)
	balances := services.NewBalanceService(db, tokens)
	users := services.NewUserService(db)

	// Gateway auth sits in front of everything in production; these tests
	// exercise the user-context layer and below.
	app := fiber.New()
	SetupWalletRoutes(app, deposits, balances, referrals, users)

	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.WalletUser {
	u := &models.WalletUser{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       username,
		ReferralCode:   username + "-code",
		IsAdmin:        isAdmin,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedNativeToken(t *testing.T, db *gorm.DB, price string) *models.TokenConfig {
	token := &models.TokenConfig{
		ID:       uuid.NewString(),
		Symbol:   "WLT",
		Name:     "Wallet Token",
		IsNative: true,
		IsActive: true,
	}
	require.NoError(t, db.Create(token).Error)
	require.NoError(t, db.Create(&models.TokenPrice{
		ID:            uuid.NewString(),
		TokenConfigID: token.ID,
		PriceUSD:      mustDecimal(t, price),
		Source:        "test",
		FetchedAt:     time.Now(),
	}).Error)
	return token
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, user *models.WalletUser, body interface{}) (int, map[string]interface{}) {
	r := httptest.NewRequest(method, path, jsonBody(t, body))
	r.Header.Set("Content-Type", "application/json")
	if user != nil {
		r.Header.Set("X-User-ID", user.ExternalUserID)
	}

	resp, err := app.Test(r, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp.StatusCode, parsed
}

func TestBalanceRequiresAuthentication(t *testing.T) {
	app, db := setupTestApp(t)
	seedNativeToken(t, db, "1.00")

	r := httptest.NewRequest("GET", "/api/user/token/balance", nil)
	resp, err := app.Test(r, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateDepositResponse(t *testing.T) {
	app, db := setupTestApp(t)
	seedNativeToken(t, db, "1.00")
	user := seedUser(t, db, "alice", false)

	status, body := doJSON(t, app, "POST", "/api/deposits", user, fiber.Map{
		"amount":          100,
		"transactionHash": "0xabc",
		"paymentMethod":   "usdt",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "pending", body["status"])
	// Amounts are formatted to 8 decimal places in deposit responses.
	assert.Equal(t, "100.00000000", body["amount"])

	status, _ = doJSON(t, app, "POST", "/api/deposits", user, fiber.Map{
		"amount":          -5,
		"transactionHash": "0xabc",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdminTransitionStatusCodes(t *testing.T) {
	app, db := setupTestApp(t)
	seedNativeToken(t, db, "0.50")
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "root", true)

	status, body := doJSON(t, app, "POST", "/api/deposits", user, fiber.Map{
		"amount":          100,
		"transactionHash": "0xabc",
	})
	require.Equal(t, fiber.StatusOK, status)
	depositID, _ := body["id"].(string)
	require.NotEmpty(t, depositID)

	// Non-admin cannot transition.
	status, _ = doJSON(t, app, "PUT", "/api/admin/deposits/"+depositID, user, fiber.Map{
		"status": "approved",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Unknown deposit id.
	status, _ = doJSON(t, app, "PUT", "/api/admin/deposits/"+uuid.NewString(), admin, fiber.Map{
		"status": "approved",
	})
	assert.Equal(t, fiber.StatusNotFound, status)

	// Admin approves.
	status, body = doJSON(t, app, "PUT", "/api/admin/deposits/"+depositID, admin, fiber.Map{
		"status":     "approved",
		"adminNotes": "checked",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, "checked", body["adminNotes"])

	// Terminal: the convenience endpoints surface the conflict.
	status, _ = doJSON(t, app, "POST", "/api/admin/deposits/"+depositID+"/approve", admin, fiber.Map{})
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = doJSON(t, app, "POST", "/api/admin/deposits/"+depositID+"/reject", admin, fiber.Map{})
	assert.Equal(t, fiber.StatusConflict, status)

	// The balance read path reflects the single credit.
	r := httptest.NewRequest("GET", "/api/user/token/balance", nil)
	r.Header.Set("X-User-ID", user.ExternalUserID)
	resp, err := app.Test(r, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var balance struct {
		Balance  decimal.Decimal `json:"balance"`
		USDValue decimal.Decimal `json:"usdValue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balance))
	assert.True(t, balance.Balance.Equal(mustDecimal(t, "200")), "balance = %s", balance.Balance)
	assert.True(t, balance.USDValue.Equal(mustDecimal(t, "100")), "usdValue = %s", balance.USDValue)
}

func TestConvenienceRejectEndpoint(t *testing.T) {
	app, db := setupTestApp(t)
	seedNativeToken(t, db, "1.00")
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "root", true)

	status, body := doJSON(t, app, "POST", "/api/deposits", user, fiber.Map{
		"amount":          25,
		"transactionHash": "0xdef",
	})
	require.Equal(t, fiber.StatusOK, status)
	depositID, _ := body["id"].(string)

	status, body = doJSON(t, app, "POST", "/api/admin/deposits/"+depositID+"/reject", admin, fiber.Map{
		"adminNotes": "hash not found",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "rejected", body["status"])
	assert.Equal(t, "hash not found", body["adminNotes"])

	// No ledger rows were written for the rejection.
	var txCount int64
	db.Model(&models.Transaction{}).Count(&txCount)
	assert.Zero(t, txCount)
}

func TestReferralEarningsEndpoint(t *testing.T) {
	app, db := setupTestApp(t)
	seedNativeToken(t, db, "0.50")
	admin := seedUser(t, db, "root", true)
	referrer := seedUser(t, db, "bob", false)

	referred := seedUser(t, db, "alice", false)
	require.NoError(t, db.Model(referred).Update("referred_by", referrer.ReferralCode).Error)

	status, body := doJSON(t, app, "POST", "/api/deposits", referred, fiber.Map{
		"amount":          100,
		"transactionHash": "0xabc",
	})
	require.Equal(t, fiber.StatusOK, status)
	depositID, _ := body["id"].(string)

	status, _ = doJSON(t, app, "POST", "/api/admin/deposits/"+depositID+"/approve", admin, fiber.Map{})
	require.Equal(t, fiber.StatusOK, status)

	r := httptest.NewRequest("GET", "/api/user/referral-earnings", nil)
	r.Header.Set("X-User-ID", referrer.ExternalUserID)
	resp, err := app.Test(r, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var earnings []models.ReferralEarning
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&earnings))
	require.Len(t, earnings, 1)
	assert.True(t, earnings[0].EarningsAmount.Equal(mustDecimal(t, "5.00")))
}
