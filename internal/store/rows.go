package store

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/tigranv/moneta/internal/domain"
)

// Table names in the hosted dataset.
const (
	TableAccounts     = "accounts"
	TableTransactions = "transactions"
	TableCategories   = "categories"
	TablePeople       = "people"
	TableShops        = "shops"
)

// AccountRow is an account record as stored.
type AccountRow struct {
	AccountID   string              `bigquery:"account_id" json:"account_id"`
	Name        string              `bigquery:"name" json:"name"`
	AccountType bigquery.NullString `bigquery:"account_type" json:"account_type,omitempty"`

	CreditLimit bigquery.NullFloat64 `bigquery:"credit_limit" json:"credit_limit,omitempty"`

	IsCashbackEligible bool                 `bigquery:"is_cashback_eligible" json:"is_cashback_eligible"`
	CashbackPercentage bigquery.NullFloat64 `bigquery:"cashback_percentage" json:"cashback_percentage,omitempty"`
	MaxCashbackAmount  bigquery.NullFloat64 `bigquery:"max_cashback_amount" json:"max_cashback_amount,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}

// ToDomain converts the stored row to the domain account.
func (r *AccountRow) ToDomain() *domain.Account {
	acc := &domain.Account{
		ID:                 r.AccountID,
		Name:               r.Name,
		IsCashbackEligible: r.IsCashbackEligible,
	}
	if r.AccountType.Valid {
		acc.Type = r.AccountType.StringVal
	}
	if r.CreditLimit.Valid {
		d := decimal.NewFromFloat(r.CreditLimit.Float64)
		acc.CreditLimit = &d
	}
	if r.CashbackPercentage.Valid {
		d := decimal.NewFromFloat(r.CashbackPercentage.Float64)
		acc.CashbackPercentage = &d
	}
	if r.MaxCashbackAmount.Valid {
		d := decimal.NewFromFloat(r.MaxCashbackAmount.Float64)
		acc.MaxCashbackAmount = &d
	}
	return acc
}

// TransactionRow is a transaction record as stored. Natures are kept as
// raw strings because historical rows carry inconsistent spellings;
// readers normalize through domain.ParseNature.
type TransactionRow struct {
	TransactionID   string     `bigquery:"transaction_id" json:"transaction_id"`
	TransactionDate civil.Date `bigquery:"transaction_date" json:"transaction_date"`
	Nature          string     `bigquery:"nature" json:"nature"`
	Amount          float64    `bigquery:"amount" json:"amount"`

	Notes bigquery.NullString `bigquery:"notes" json:"notes,omitempty"`

	FromAccountID bigquery.NullString `bigquery:"from_account_id" json:"from_account_id,omitempty"`
	ToAccountID   bigquery.NullString `bigquery:"to_account_id" json:"to_account_id,omitempty"`
	PersonID      bigquery.NullString `bigquery:"person_id" json:"person_id,omitempty"`

	CashbackPercent bigquery.NullFloat64 `bigquery:"cashback_percent" json:"cashback_percent,omitempty"`
	CashbackAmount  bigquery.NullFloat64 `bigquery:"cashback_amount" json:"cashback_amount,omitempty"`
	CashbackSource  bigquery.NullString  `bigquery:"cashback_source" json:"cashback_source,omitempty"`
	FinalPrice      bigquery.NullFloat64 `bigquery:"final_price" json:"final_price,omitempty"`

	DebtCycle bigquery.NullString `bigquery:"debt_cycle" json:"debt_cycle,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}

// ToDomain converts the stored row to the domain transaction. The person
// reference, when known, comes from the caller's people lookup.
func (r *TransactionRow) ToDomain(person *domain.Person) domain.Transaction {
	tx := domain.Transaction{
		ID:     r.TransactionID,
		Date:   r.TransactionDate.In(time.UTC),
		Nature: domain.ParseNatureDefault(r.Nature),
		Amount: decimal.NewFromFloat(r.Amount),
		Person: person,
	}
	if r.Notes.Valid {
		tx.Notes = r.Notes.StringVal
	}
	if r.FromAccountID.Valid {
		tx.FromAccountID = r.FromAccountID.StringVal
	}
	if r.ToAccountID.Valid {
		tx.ToAccountID = r.ToAccountID.StringVal
	}
	if r.PersonID.Valid {
		tx.PersonID = r.PersonID.StringVal
	}
	if r.CashbackPercent.Valid {
		tx.CashbackPercent = decimal.NewFromFloat(r.CashbackPercent.Float64)
	}
	if r.CashbackAmount.Valid {
		tx.CashbackAmount = decimal.NewFromFloat(r.CashbackAmount.Float64)
	}
	if r.CashbackSource.Valid {
		tx.CashbackSource = domain.CashbackSource(r.CashbackSource.StringVal)
	}
	if r.FinalPrice.Valid {
		d := decimal.NewFromFloat(r.FinalPrice.Float64)
		tx.FinalPrice = &d
	}
	if r.DebtCycle.Valid {
		tx.DebtCycle = r.DebtCycle.StringVal
	}
	return tx
}

// NewTransactionRow shapes a validated input and its resolved cashback
// into a row ready for insert.
func NewTransactionRow(id string, in *domain.TransactionInput, cb domain.CashbackResult, source domain.CashbackSource) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   id,
		TransactionDate: civil.DateOf(in.Date),
		Nature:          string(in.Nature),
		Amount:          in.Amount.InexactFloat64(),
		CreatedTS:       time.Now().UTC(),
	}
	if in.Notes != "" {
		row.Notes = bigquery.NullString{StringVal: in.Notes, Valid: true}
	}
	if in.FromAccountID != "" {
		row.FromAccountID = bigquery.NullString{StringVal: in.FromAccountID, Valid: true}
	}
	if in.ToAccountID != "" {
		row.ToAccountID = bigquery.NullString{StringVal: in.ToAccountID, Valid: true}
	}
	if in.PersonID != "" {
		row.PersonID = bigquery.NullString{StringVal: in.PersonID, Valid: true}
	}
	if in.DebtCycle != "" {
		row.DebtCycle = bigquery.NullString{StringVal: in.DebtCycle, Valid: true}
	}

	row.CashbackPercent = bigquery.NullFloat64{Float64: cb.Percent.InexactFloat64(), Valid: true}
	row.CashbackAmount = bigquery.NullFloat64{Float64: cb.Amount.InexactFloat64(), Valid: true}
	row.FinalPrice = bigquery.NullFloat64{Float64: cb.FinalPrice.InexactFloat64(), Valid: true}
	if source != domain.CashbackSourceNone {
		row.CashbackSource = bigquery.NullString{StringVal: string(source), Valid: true}
	}
	return row
}

// CategoryRow is a category or subcategory record as stored. A row with
// a parent id is a subcategory; nature resolution prefers the row's own
// nature and falls back to the parent's.
type CategoryRow struct {
	CategoryID       string              `bigquery:"category_id" json:"category_id"`
	Name             string              `bigquery:"name" json:"name"`
	Nature           bigquery.NullString `bigquery:"nature" json:"nature,omitempty"`
	ParentCategoryID bigquery.NullString `bigquery:"parent_category_id" json:"parent_category_id,omitempty"`
	IsShop           bigquery.NullBool   `bigquery:"is_shop" json:"is_shop,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}

// ToDomain converts the stored row to the domain category info.
func (r *CategoryRow) ToDomain() domain.CategoryInfo {
	info := domain.CategoryInfo{
		ID:   r.CategoryID,
		Name: r.Name,
	}
	if r.Nature.Valid {
		info.Nature = r.Nature.StringVal
	}
	if r.ParentCategoryID.Valid {
		info.ParentID = r.ParentCategoryID.StringVal
	}
	if r.IsShop.Valid {
		info.IsShop = r.IsShop.Bool
	}
	return info
}

// ResolveCategoryNature resolves a category row's nature code against
// the full category list, walking to the parent when the row itself has
// no recognizable nature.
func ResolveCategoryNature(row *CategoryRow, all []*CategoryRow) (domain.NatureCode, bool) {
	info := row.ToDomain()
	var parent *domain.CategoryInfo
	if info.ParentID != "" {
		for _, cand := range all {
			if cand.CategoryID == info.ParentID {
				p := cand.ToDomain()
				parent = &p
				break
			}
		}
	}
	return info.NatureCode(parent)
}

// PersonRow is a person record as stored.
type PersonRow struct {
	PersonID string              `bigquery:"person_id" json:"person_id"`
	Name     string              `bigquery:"name" json:"name"`
	ImageURI bigquery.NullString `bigquery:"image_uri" json:"image_uri,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}

// ToDomain converts the stored row to the domain person.
func (r *PersonRow) ToDomain() *domain.Person {
	p := &domain.Person{ID: r.PersonID, Name: r.Name}
	if r.ImageURI.Valid {
		p.Image = r.ImageURI.StringVal
	}
	return p
}

// ShopRow is a shop record as stored.
type ShopRow struct {
	ShopID     string              `bigquery:"shop_id" json:"shop_id"`
	Name       string              `bigquery:"name" json:"name"`
	CategoryID bigquery.NullString `bigquery:"category_id" json:"category_id,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}

// ToDomain converts the stored row to the domain shop.
func (r *ShopRow) ToDomain() domain.Shop {
	s := domain.Shop{ID: r.ShopID, Name: r.Name}
	if r.CategoryID.Valid {
		s.CategoryID = r.CategoryID.StringVal
	}
	return s
}

// PeopleByID indexes person rows for transaction joins.
func PeopleByID(rows []*PersonRow) map[string]*domain.Person {
	out := make(map[string]*domain.Person, len(rows))
	for _, r := range rows {
		out[r.PersonID] = r.ToDomain()
	}
	return out
}
