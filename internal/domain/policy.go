// internal/domain/policy.go
package domain

import "splitflow/internal/util"

// SplitPolicy is the percentage triple that governs how income is allocated.
type SplitPolicy struct {
	SpendPercent  int `db:"spend_percent" json:"spend_percent"`
	SavePercent   int `db:"save_percent" json:"save_percent"`
	InvestPercent int `db:"invest_percent" json:"invest_percent"`
}

// DefaultSplitPolicy is assigned to every new account: 50/30/20.
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{SpendPercent: 50, SavePercent: 30, InvestPercent: 20}
}

// Validate returns util.ErrInvalidPolicy unless every component lies in 0..100
// and the three sum to exactly 100.
func (p SplitPolicy) Validate() error {
	for _, v := range []int{p.SpendPercent, p.SavePercent, p.InvestPercent} {
		if v < 0 || v > 100 {
			return util.ErrInvalidPolicy
		}
	}
	if p.SpendPercent+p.SavePercent+p.InvestPercent != 100 {
		return util.ErrInvalidPolicy
	}
	return nil
}

// Percent returns the share assigned to c.
func (p SplitPolicy) Percent(c Category) int {
	switch c {
	case CategorySpend:
		return p.SpendPercent
	case CategorySave:
		return p.SavePercent
	case CategoryInvest:
		return p.InvestPercent
	}
	return 0
}

// Allocation is the per-category result of splitting one income amount.
type Allocation struct {
	Spend  int64 `json:"spend"`
	Save   int64 `json:"save"`
	Invest int64 `json:"invest"`
}

// Sum returns the allocated total.
func (a Allocation) Sum() int64 {
	return a.Spend + a.Save + a.Invest
}

// Split divides amount according to the policy. Spend and save are floored;
// invest, the last category, receives whatever remains, so the allocation
// always sums to amount exactly. The policy must already be valid and amount
// non-negative.
func (p SplitPolicy) Split(amount int64) Allocation {
	spend := percentOf(amount, p.SpendPercent)
	save := percentOf(amount, p.SavePercent)
	return Allocation{
		Spend:  spend,
		Save:   save,
		Invest: amount - spend - save,
	}
}

// percentOf computes floor(amount*pct/100) without forming amount*pct,
// which would overflow for large amounts.
func percentOf(amount int64, pct int) int64 {
	p := int64(pct)
	return amount/100*p + amount%100*p/100
}
