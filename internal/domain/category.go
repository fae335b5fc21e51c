// internal/domain/category.go
package domain

import (
	"strings"

	"splitflow/internal/util"
)

// Identity is the opaque, already-verified caller token that keys all per-account state.
// Nothing in the ledger inspects its structure.
type Identity string

// Validate rejects the empty identity; any other value is accepted as-is.
func (id Identity) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return util.ErrInvalidIdentity
	}
	return nil
}

// Category is one of the three sub-balance buckets.
type Category string

const (
	CategorySpend  Category = "spend"
	CategorySave   Category = "save"
	CategoryInvest Category = "invest"
)

// Categories lists the buckets in declaration order. The last one absorbs split remainders.
var Categories = []Category{CategorySpend, CategorySave, CategoryInvest}

// ParseCategory maps a case-insensitive name onto a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", util.ErrInvalidCategory
	}
	return c, nil
}

// Valid reports whether c names a known bucket.
func (c Category) Valid() bool {
	switch c {
	case CategorySpend, CategorySave, CategoryInvest:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }
