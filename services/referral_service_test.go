package services

import (
	"testing"

	"crypto-wallet-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralAccrualOnApproval(t *testing.T) {
	core := newTestCore(t)
	token := createNativeToken(t, core, "0.50")
	admin := createUser(t, core.db, "admin", true, nil)
	referrer := createUser(t, core.db, "bob", false, nil)
	referred := createUser(t, core.db, "alice", false, &referrer.ReferralCode)

	deposit, err := core.deposits.CreateDepositRequest(referred, dec(t, "100.00"), "0xabc", "usdt")
	require.NoError(t, err)
	_, err = core.deposits.ApproveDeposit(deposit.ID, "", admin)
	require.NoError(t, err)

	// Exactly one earning of 5% of the deposit.
	var earnings []models.ReferralEarning
	require.NoError(t, core.db.Find(&earnings).Error)
	require.Len(t, earnings, 1)
	assert.Equal(t, referrer.ID, earnings[0].ReferrerID)
	assert.Equal(t, referred.ID, earnings[0].ReferredUserID)
	assert.Equal(t, deposit.ID, earnings[0].DepositID)
	assert.True(t, earnings[0].DepositAmount.Equal(dec(t, "100.00")))
	assert.True(t, earnings[0].EarningsAmount.Equal(dec(t, "5.00")), "earnings = %s", earnings[0].EarningsAmount)

	// 5.00 USD at 0.50 USD/token is 10 token units for the referrer.
	balance, err := core.balances.GetBalance(referrer.ID, token.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(dec(t, "10")), "balance = %s", balance.Balance)
	assert.True(t, balance.USDValue.Equal(dec(t, "5.00")), "usdValue = %s", balance.USDValue)

	// The referrer's ledger entry identifies the income as referral.
	var entries []models.Transaction
	require.NoError(t, core.db.Where("user_id = ?", referrer.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionTypeReceive, entries[0].Type)
	assert.Equal(t, models.TransactionStatusConfirmed, entries[0].Status)
	assert.Contains(t, entries[0].Description, "Referral commission")
	assert.True(t, entries[0].Amount.Equal(dec(t, "10")))

	// The depositor's own credit is unaffected by the accrual.
	depositorBalance, err := core.balances.GetBalance(referred.ID, token.ID)
	require.NoError(t, err)
	assert.True(t, depositorBalance.Balance.Equal(dec(t, "200")))
}

func TestReferralEarningsListing(t *testing.T) {
	core := newTestCore(t)
	createNativeToken(t, core, "1.00")
	admin := createUser(t, core.db, "admin", true, nil)
	referrer := createUser(t, core.db, "bob", false, nil)
	referred := createUser(t, core.db, "alice", false, &referrer.ReferralCode)

	for _, amount := range []string{"10", "20"} {
		deposit, err := core.deposits.CreateDepositRequest(referred, dec(t, amount), "0x"+amount, "usdt")
		require.NoError(t, err)
		_, err = core.deposits.ApproveDeposit(deposit.ID, "", admin)
		require.NoError(t, err)
	}

	earnings, err := core.referrals.EarningsForUser(referrer.ID)
	require.NoError(t, err)
	require.Len(t, earnings, 2)

	total := earnings[0].EarningsAmount.Add(earnings[1].EarningsAmount)
	assert.True(t, total.Equal(dec(t, "1.5")), "total = %s", total)

	// A user who referred nobody has no earnings.
	none, err := core.referrals.EarningsForUser(referred.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSelfReferralIsSkipped(t *testing.T) {
	core := newTestCore(t)
	token := createNativeToken(t, core, "0.50")
	admin := createUser(t, core.db, "admin", true, nil)

	// A violating row that slipped past registration: the user carries
	// their own referral code.
	user := createUser(t, core.db, "alice", false, nil)
	require.NoError(t, core.db.Model(user).Update("referred_by", user.ReferralCode).Error)
	require.NoError(t, core.db.First(user, "id = ?", user.ID).Error)

	deposit, err := core.deposits.CreateDepositRequest(user, dec(t, "100"), "0xabc", "usdt")
	require.NoError(t, err)
	_, err = core.deposits.ApproveDeposit(deposit.ID, "", admin)
	require.NoError(t, err)

	// The deposit credit lands; no commission does.
	var earnCount int64
	core.db.Model(&models.ReferralEarning{}).Count(&earnCount)
	assert.Zero(t, earnCount)

	balance, err := core.balances.GetBalance(user.ID, token.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(dec(t, "200")), "balance = %s", balance.Balance)
	assert.True(t, balance.USDValue.Equal(dec(t, "100")))
}

func TestUnknownReferralCodeIsSkipped(t *testing.T) {
	core := newTestCore(t)
	createNativeToken(t, core, "1.00")
	admin := createUser(t, core.db, "admin", true, nil)

	stale := "GONE-CODE"
	user := createUser(t, core.db, "alice", false, &stale)

	deposit, err := core.deposits.CreateDepositRequest(user, dec(t, "40"), "0xabc", "usdt")
	require.NoError(t, err)
	_, err = core.deposits.ApproveDeposit(deposit.ID, "", admin)
	require.NoError(t, err)

	var earnCount int64
	core.db.Model(&models.ReferralEarning{}).Count(&earnCount)
	assert.Zero(t, earnCount)
}

func TestRejectedDepositNeverAccrues(t *testing.T) {
	core := newTestCore(t)
	createNativeToken(t, core, "1.00")
	admin := createUser(t, core.db, "admin", true, nil)
	referrer := createUser(t, core.db, "bob", false, nil)
	referred := createUser(t, core.db, "alice", false, &referrer.ReferralCode)

	deposit, err := core.deposits.CreateDepositRequest(referred, dec(t, "100"), "0xabc", "usdt")
	require.NoError(t, err)
	_, err = core.deposits.RejectDeposit(deposit.ID, "no", admin)
	require.NoError(t, err)

	var earnCount int64
	core.db.Model(&models.ReferralEarning{}).Count(&earnCount)
	assert.Zero(t, earnCount)

	earnings, err := core.referrals.EarningsForUser(referrer.ID)
	require.NoError(t, err)
	assert.Empty(t, earnings)
}
