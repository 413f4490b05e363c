package services

import (
	"testing"
	"time"

	"crypto-wallet-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalanceZeroWithoutRow(t *testing.T) {
	core := newTestCore(t)
	token := createNativeToken(t, core, "1.00")
	user := createUser(t, core.db, "alice", false, nil)

	balance, err := core.balances.GetBalance(user.ID, token.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())
	assert.True(t, balance.USDValue.IsZero())

	// Reads never create rows.
	var count int64
	core.db.Model(&models.UserBalance{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetTransactionsNewestFirst(t *testing.T) {
	core := newTestCore(t)
	token := createNativeToken(t, core, "1.00")
	user := createUser(t, core.db, "alice", false, nil)

	base := time.Now().Add(-time.Hour)
	for i, desc := range []string{"oldest", "middle", "newest"} {
		entry := &models.Transaction{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			TokenConfigID: token.ID,
			Type:          models.TransactionTypeDeposit,
			Amount:        decimal.NewFromInt(int64(i + 1)),
			Status:        models.TransactionStatusConfirmed,
			Description:   desc,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, core.db.Create(entry).Error)
	}

	entries, err := core.balances.GetTransactions(user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "newest", entries[0].Description)
	assert.Equal(t, "middle", entries[1].Description)
	assert.Equal(t, "oldest", entries[2].Description)

	// Another user sees nothing.
	other := createUser(t, core.db, "bob", false, nil)
	none, err := core.balances.GetTransactions(other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// The projection invariant: every balance equals the sum of confirmed
// credits minus confirmed debits for that user/token.
func TestLedgerSumInvariant(t *testing.T) {
	core := newTestCore(t)
	token := createNativeToken(t, core, "0.50")
	admin := createUser(t, core.db, "admin", true, nil)
	referrer := createUser(t, core.db, "bob", false, nil)
	referred := createUser(t, core.db, "alice", false, &referrer.ReferralCode)

	for _, amount := range []string{"100", "50", "25"} {
		deposit, err := core.deposits.CreateDepositRequest(referred, dec(t, amount), "0x"+amount, "usdt")
		require.NoError(t, err)
		_, err = core.deposits.ApproveDeposit(deposit.ID, "", admin)
		require.NoError(t, err)
	}

	for _, user := range []*models.WalletUser{referrer, referred} {
		var entries []models.Transaction
		require.NoError(t, core.db.
			Where("user_id = ? AND status = ?", user.ID, models.TransactionStatusConfirmed).
			Find(&entries).Error)

		sum := decimal.Zero
		for _, e := range entries {
			switch e.Type {
			case models.TransactionTypeSend:
				sum = sum.Sub(e.Amount)
			default:
				sum = sum.Add(e.Amount)
			}
		}

		balance, err := core.balances.GetBalance(user.ID, token.ID)
		require.NoError(t, err)
		assert.True(t, balance.Balance.Equal(sum),
			"user %s: balance %s != ledger sum %s", user.Username, balance.Balance, sum)
	}

	// Sanity on the absolute numbers: 175 USD at 0.50 → 350 tokens for the
	// depositor, 8.75 USD → 17.5 tokens for the referrer.
	depositorBalance, err := core.balances.GetBalance(referred.ID, token.ID)
	require.NoError(t, err)
	assert.True(t, depositorBalance.Balance.Equal(dec(t, "350")))

	referrerBalance, err := core.balances.GetBalance(referrer.ID, token.ID)
	require.NoError(t, err)
	assert.True(t, referrerBalance.Balance.Equal(dec(t, "17.5")))
	assert.True(t, referrerBalance.USDValue.Equal(dec(t, "8.75")))
}
