// internal/domain/balance_test.go
package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitflow/internal/util"
)

func TestBalanceDeposit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		b, err := Balance{}.Deposit(DefaultSplitPolicy().Split(1000))
		require.NoError(t, err)
		assert.Equal(t, Balance{Spend: 500, Save: 300, Invest: 200, Total: 1000}, b)
		assert.NoError(t, b.Check())
	})

	t.Run("RoundingKeepsTotalConsistent", func(t *testing.T) {
		var b Balance
		var err error
		for i := 0; i < 10; i++ {
			b, err = b.Deposit(DefaultSplitPolicy().Split(999))
			require.NoError(t, err)
			require.NoError(t, b.Check())
		}
		assert.Equal(t, int64(9990), b.Total)
	})

	t.Run("ZeroAllocation", func(t *testing.T) {
		_, err := Balance{}.Deposit(Allocation{})
		assert.ErrorIs(t, err, util.ErrInvalidAmount)
	})

	t.Run("Overflow", func(t *testing.T) {
		start := Balance{Spend: math.MaxInt64 - 10, Total: math.MaxInt64 - 10}
		b, err := start.Deposit(Allocation{Spend: 11})
		assert.ErrorIs(t, err, util.ErrAmountOverflow)
		assert.ErrorIs(t, err, util.ErrInvalidArgument)
		assert.Equal(t, start, b)
	})
}

func TestBalanceWithdraw(t *testing.T) {
	start := Balance{Spend: 500, Save: 300, Invest: 200, Total: 1000}

	t.Run("Success", func(t *testing.T) {
		b, err := start.Withdraw(100)
		require.NoError(t, err)
		assert.Equal(t, Balance{Spend: 400, Save: 300, Invest: 200, Total: 900}, b)
	})

	t.Run("ExactSpendBalance", func(t *testing.T) {
		b, err := start.Withdraw(500)
		require.NoError(t, err)
		assert.Equal(t, int64(0), b.Spend)
		assert.Equal(t, int64(500), b.Total)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		b, err := start.Withdraw(501)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Equal(t, start, b)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		for _, amt := range []int64{0, -5} {
			_, err := start.Withdraw(amt)
			assert.ErrorIs(t, err, util.ErrInvalidAmount)
		}
	})
}

func TestBalanceMove(t *testing.T) {
	start := Balance{Spend: 400, Save: 300, Invest: 200, Total: 900}

	t.Run("SaveToSpend", func(t *testing.T) {
		b, err := start.Move(CategorySave, CategorySpend, 50)
		require.NoError(t, err)
		assert.Equal(t, Balance{Spend: 450, Save: 250, Invest: 200, Total: 900}, b)
		assert.NoError(t, b.Check())
	})

	t.Run("SameCategoryCheckedBeforeFunds", func(t *testing.T) {
		_, err := start.Move(CategoryInvest, CategoryInvest, 1_000_000)
		assert.ErrorIs(t, err, util.ErrSameCategory)
		assert.ErrorIs(t, err, util.ErrInvalidArgument)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		b, err := start.Move(CategoryInvest, CategorySave, 201)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Equal(t, start, b)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		_, err := start.Move(Category("bonds"), CategorySave, 1)
		assert.ErrorIs(t, err, util.ErrInvalidCategory)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, err := start.Move(CategorySave, CategorySpend, 0)
		assert.ErrorIs(t, err, util.ErrInvalidAmount)
	})
}

func TestBalanceCheck(t *testing.T) {
	assert.NoError(t, Balance{}.Check())
	assert.Error(t, Balance{Spend: 1, Total: 2}.Check())
	assert.Error(t, Balance{Spend: -1, Save: 1, Total: 0}.Check())
}
