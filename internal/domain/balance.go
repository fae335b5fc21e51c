// internal/domain/balance.go
package domain

import (
	"fmt"
	"math"

	"splitflow/internal/util"
)

// Balance holds the three categorized sub-balances, in minor currency units, plus their total.
// Total always equals Spend+Save+Invest.
type Balance struct {
	Spend  int64 `db:"spend" json:"spend"`
	Save   int64 `db:"save" json:"save"`
	Invest int64 `db:"invest" json:"invest"`
	Total  int64 `db:"total" json:"total"`
}

// Of returns the sub-balance held in c.
func (b Balance) Of(c Category) int64 {
	switch c {
	case CategorySpend:
		return b.Spend
	case CategorySave:
		return b.Save
	case CategoryInvest:
		return b.Invest
	}
	return 0
}

// Check verifies the balance is non-negative and that Total matches the category sum.
func (b Balance) Check() error {
	if b.Spend < 0 || b.Save < 0 || b.Invest < 0 {
		return fmt.Errorf("negative sub-balance: %+v", b)
	}
	if b.Total != b.Spend+b.Save+b.Invest {
		return fmt.Errorf("total %d does not match category sum %d", b.Total, b.Spend+b.Save+b.Invest)
	}
	return nil
}

// Deposit credits an income allocation. Total grows by exactly the allocated sum.
func (b Balance) Deposit(a Allocation) (Balance, error) {
	sum := a.Sum()
	if sum <= 0 {
		return b, util.ErrInvalidAmount
	}
	if b.Total > math.MaxInt64-sum {
		return b, util.ErrAmountOverflow
	}
	return Balance{
		Spend:  b.Spend + a.Spend,
		Save:   b.Save + a.Save,
		Invest: b.Invest + a.Invest,
		Total:  b.Total + sum,
	}, nil
}

// Withdraw takes amount out of the spend bucket.
func (b Balance) Withdraw(amount int64) (Balance, error) {
	if amount <= 0 {
		return b, util.ErrInvalidAmount
	}
	if amount > b.Spend {
		return b, util.ErrInsufficientFunds
	}
	b.Spend -= amount
	b.Total -= amount
	return b, nil
}

// Move shifts amount from one category to another. Total is unchanged.
// Identical categories are rejected before funds are looked at.
func (b Balance) Move(from, to Category, amount int64) (Balance, error) {
	if amount <= 0 {
		return b, util.ErrInvalidAmount
	}
	if !from.Valid() || !to.Valid() {
		return b, util.ErrInvalidCategory
	}
	if from == to {
		return b, util.ErrSameCategory
	}
	if amount > b.Of(from) {
		return b, util.ErrInsufficientFunds
	}
	// to's balance cannot overflow: every bucket is bounded by Total.
	b.set(from, b.Of(from)-amount)
	b.set(to, b.Of(to)+amount)
	return b, nil
}

func (b *Balance) set(c Category, v int64) {
	switch c {
	case CategorySpend:
		b.Spend = v
	case CategorySave:
		b.Save = v
	case CategoryInvest:
		b.Invest = v
	}
}
