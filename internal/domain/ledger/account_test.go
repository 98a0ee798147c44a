package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("creates account with valid input", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash on Hand", AccountTypeAsset, NormalBalanceDebit, "Main cash account")
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, "1005", account.Code)
		assert.Equal(t, "Cash on Hand", account.Name)
		assert.Equal(t, AccountTypeAsset, account.Type)
		assert.Equal(t, NormalBalanceDebit, account.NormalBalance)
		assert.Nil(t, account.ArchivedAt)
		assert.False(t, account.IsArchived())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		account, err := NewAccount("1005", "", AccountTypeAsset, NormalBalanceDebit, "")
		assert.Nil(t, account)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with invalid type", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountType("WEIRD"), NormalBalanceDebit, "")
		assert.Nil(t, account)
		assert.Error(t, err)
	})

	t.Run("fails with invalid normal balance", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountTypeAsset, NormalBalance("BOTH"), "")
		assert.Nil(t, account)
		assert.Error(t, err)
	})

	t.Run("fails when code prefix does not match type", func(t *testing.T) {
		account, err := NewAccount("4005", "Cash", AccountTypeAsset, NormalBalanceDebit, "")
		assert.Nil(t, account)
		assert.Error(t, err)
	})
}

func TestValidateAccountCode(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		accountType AccountType
		wantErr     bool
	}{
		{"valid asset code", "1005", AccountTypeAsset, false},
		{"valid liability code", "2110", AccountTypeLiability, false},
		{"valid equity code", "3000", AccountTypeEquity, false},
		{"valid revenue code", "4005", AccountTypeRevenue, false},
		{"valid expense code", "5999", AccountTypeExpense, false},
		{"wrong prefix for type", "2005", AccountTypeAsset, true},
		{"too short", "100", AccountTypeAsset, true},
		{"too long", "10005", AccountTypeAsset, true},
		{"non numeric suffix", "1a05", AccountTypeAsset, true},
		{"invalid type", "1005", AccountType("WEIRD"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountCode(tt.code, tt.accountType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextAccountCode(t *testing.T) {
	t.Run("starts sequence when no codes exist", func(t *testing.T) {
		code, err := NextAccountCode(AccountTypeAsset, "")
		require.NoError(t, err)
		assert.Equal(t, "1005", code)
	})

	t.Run("advances by code step", func(t *testing.T) {
		code, err := NextAccountCode(AccountTypeRevenue, "4010")
		require.NoError(t, err)
		assert.Equal(t, "4015", code)
	})

	t.Run("fails when the code space is exhausted", func(t *testing.T) {
		_, err := NextAccountCode(AccountTypeAsset, "1999")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "No more account codes")
	})

	t.Run("fails when existing code is malformed", func(t *testing.T) {
		_, err := NextAccountCode(AccountTypeAsset, "abcd")
		assert.Error(t, err)
	})
}

func TestAccount_Archive(t *testing.T) {
	t.Run("archives an active account", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountTypeAsset, NormalBalanceDebit, "")
		require.NoError(t, err)

		version := account.Version
		require.NoError(t, account.Archive())
		assert.True(t, account.IsArchived())
		assert.NotNil(t, account.ArchivedAt)
		assert.Equal(t, version+1, account.Version)
	})

	t.Run("fails when already archived", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountTypeAsset, NormalBalanceDebit, "")
		require.NoError(t, err)
		require.NoError(t, account.Archive())

		err = account.Archive()
		assert.Error(t, err)
	})
}

func TestAccount_Rename(t *testing.T) {
	t.Run("renames an active account", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountTypeAsset, NormalBalanceDebit, "")
		require.NoError(t, err)

		require.NoError(t, account.Rename("Petty Cash"))
		assert.Equal(t, "Petty Cash", account.Name)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountTypeAsset, NormalBalanceDebit, "")
		require.NoError(t, err)

		assert.Error(t, account.Rename(""))
	})

	t.Run("fails on archived account", func(t *testing.T) {
		account, err := NewAccount("1005", "Cash", AccountTypeAsset, NormalBalanceDebit, "")
		require.NoError(t, err)
		require.NoError(t, account.Archive())

		assert.Error(t, account.Rename("Petty Cash"))
	})
}

func TestAccountType_CodePrefix(t *testing.T) {
	assert.Equal(t, "1", AccountTypeAsset.CodePrefix())
	assert.Equal(t, "2", AccountTypeLiability.CodePrefix())
	assert.Equal(t, "3", AccountTypeEquity.CodePrefix())
	assert.Equal(t, "4", AccountTypeRevenue.CodePrefix())
	assert.Equal(t, "5", AccountTypeExpense.CodePrefix())
	assert.Equal(t, "", AccountType("WEIRD").CodePrefix())
}
