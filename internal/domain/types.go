package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a money account a transaction draws from or pays into.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`

	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`

	// Cashback policy. When IsCashbackEligible is false the remaining
	// fields are ignored entirely regardless of their stored values.
	IsCashbackEligible bool `json:"is_cashback_eligible"`
	// CashbackPercentage is stored as a fraction (0.05 means 5%).
	CashbackPercentage *decimal.Decimal `json:"cashback_percentage,omitempty"`
	// MaxCashbackAmount is an absolute currency cap per transaction.
	MaxCashbackAmount *decimal.Decimal `json:"max_cashback_amount,omitempty"`
}

// Person is a debt counterparty.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// CashbackSource records which input resolved a transaction's cashback.
type CashbackSource string

const (
	// CashbackSourcePercent means the cashback was entered as a percent
	// and the stored amount was derived from it.
	CashbackSourcePercent CashbackSource = "percent"
	// CashbackSourceAmount means the cashback was entered as a manual
	// currency amount.
	CashbackSourceAmount CashbackSource = "amount"
	// CashbackSourceNone means no cashback applies.
	CashbackSourceNone CashbackSource = ""
)

// Transaction is a single expense, income, transfer or debt record.
// Records are created once and deleted; they are never updated in place.
type Transaction struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Nature NatureCode      `json:"nature"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`

	// Participant fields depend on the nature: expense uses the from
	// account, income the to account, transfer both, debt the person.
	FromAccountID string `json:"from_account_id,omitempty"`
	ToAccountID   string `json:"to_account_id,omitempty"`
	PersonID      string `json:"person_id,omitempty"`

	// CashbackPercent is on a 0-100 scale.
	CashbackPercent decimal.Decimal `json:"cashback_percent"`
	CashbackAmount  decimal.Decimal `json:"cashback_amount"`
	CashbackSource  CashbackSource  `json:"cashback_source,omitempty"`

	// FinalPrice is amount minus resolved cashback, floored at zero.
	// Nil on legacy rows; readers fall back to Amount.
	FinalPrice *decimal.Decimal `json:"final_price,omitempty"`

	// DebtCycle is a user-defined tag (usually a month label) grouping
	// debt transactions for repayment tracking.
	DebtCycle string `json:"debt_cycle,omitempty"`

	Person *Person `json:"person,omitempty"`
}

// EffectiveFinalPrice returns the stored final price, or the raw amount
// for rows that predate the final_price column.
func (t *Transaction) EffectiveFinalPrice() decimal.Decimal {
	if t.FinalPrice != nil {
		return *t.FinalPrice
	}
	return t.Amount
}

// Shop is a place transactions happen at.
type Shop struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id,omitempty"`
}

// CategoryInfo is a category or subcategory with its resolved fields.
type CategoryInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nature   string `json:"nature,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	IsShop   bool   `json:"is_shop,omitempty"`
}

// NatureCode resolves the category's own nature label, preferring its own
// field and falling back to the parent's when given.
func (c *CategoryInfo) NatureCode(parent *CategoryInfo) (NatureCode, bool) {
	if code, ok := ParseNature(c.Nature); ok {
		return code, ok
	}
	if parent != nil {
		return ParseNature(parent.Nature)
	}
	return "", false
}

// CategoryRelation is the normalized form of the store's duck-typed
// category expansion, which historically arrives as a single object, an
// array, or nothing at all.
type CategoryRelation struct {
	categories []CategoryInfo
}

// NoCategory is the empty relation.
func NoCategory() CategoryRelation {
	return CategoryRelation{}
}

// SingleCategory wraps one expanded category.
func SingleCategory(c CategoryInfo) CategoryRelation {
	return CategoryRelation{categories: []CategoryInfo{c}}
}

// ManyCategories wraps an expanded category list.
func ManyCategories(cs []CategoryInfo) CategoryRelation {
	cp := make([]CategoryInfo, len(cs))
	copy(cp, cs)
	return CategoryRelation{categories: cp}
}

// Resolve collapses the relation to a single category: the sole entry for
// a single relation, the first entry for a list, nil when absent. Every
// call site uses this instead of branching on the runtime shape.
func (r CategoryRelation) Resolve() *CategoryInfo {
	if len(r.categories) == 0 {
		return nil
	}
	c := r.categories[0]
	return &c
}
