package memory

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/tigranv/moneta/internal/store"
)

func nullStr(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: true}
}

func nullFloat(f float64) bigquery.NullFloat64 {
	return bigquery.NullFloat64{Float64: f, Valid: true}
}

// NewSampleStore returns a store seeded with the built-in demo dataset.
// The API serves this data when the hosted store is unreachable, so the
// rows deliberately include legacy nature spellings and rows without a
// final_price to exercise the normalization paths.
func NewSampleStore() *Store {
	s := NewStore()
	ctx := context.Background()
	ts := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	accounts := []*store.AccountRow{
		{
			AccountID:          "acc-main",
			Name:               "Main Card",
			AccountType:        nullStr("debit"),
			IsCashbackEligible: true,
			CashbackPercentage: nullFloat(0.05),
			MaxCashbackAmount:  nullFloat(3000),
			CreatedTS:          ts,
		},
		{
			AccountID:   "acc-cash",
			Name:        "Cash",
			AccountType: nullStr("cash"),
			CreatedTS:   ts,
		},
		{
			AccountID:   "acc-credit",
			Name:        "Credit Line",
			AccountType: nullStr("credit"),
			CreditLimit: nullFloat(500000),
			CreatedTS:   ts,
		},
	}
	for _, row := range accounts {
		_ = s.InsertAccount(ctx, row)
	}

	categories := []*store.CategoryRow{
		{CategoryID: "cat-food", Name: "Food", Nature: nullStr("Expense"), CreatedTS: ts},
		{CategoryID: "cat-groceries", Name: "Groceries", ParentCategoryID: nullStr("cat-food"), CreatedTS: ts},
		{CategoryID: "cat-salary", Name: "Salary", Nature: nullStr("IN"), CreatedTS: ts},
		// Legacy rows with historical spellings.
		{CategoryID: "cat-moves", Name: "Between Accounts", Nature: nullStr("transfers"), CreatedTS: ts},
		{CategoryID: "cat-lend", Name: "Lending", Nature: nullStr("Debt"), CreatedTS: ts},
	}
	for _, row := range categories {
		_ = s.InsertCategory(ctx, row)
	}

	people := []*store.PersonRow{
		{PersonID: "p-ani", Name: "Ani", CreatedTS: ts},
		{PersonID: "p-zara", Name: "Zara", CreatedTS: ts},
	}
	for _, row := range people {
		_ = s.InsertPerson(ctx, row)
	}

	shops := []*store.ShopRow{
		{ShopID: "shop-geant", Name: "Géant", CategoryID: nullStr("cat-groceries"), CreatedTS: ts},
		{ShopID: "shop-corner", Name: "Corner Market", CategoryID: nullStr("cat-food"), CreatedTS: ts},
	}
	for _, row := range shops {
		_ = s.InsertShop(ctx, row)
	}

	transactions := []*store.TransactionRow{
		{
			TransactionID:   "tx-1",
			TransactionDate: civil.Date{Year: 2025, Month: time.February, Day: 3},
			Nature:          "EX",
			Amount:          100000,
			Notes:           nullStr("laptop"),
			FromAccountID:   nullStr("acc-main"),
			CashbackPercent: nullFloat(3),
			CashbackAmount:  nullFloat(3000),
			CashbackSource:  nullStr("percent"),
			FinalPrice:      nullFloat(97000),
			CreatedTS:       ts,
		},
		{
			TransactionID:   "tx-2",
			TransactionDate: civil.Date{Year: 2025, Month: time.February, Day: 10},
			Nature:          "Expenses", // legacy spelling
			Amount:          4500,
			Notes:           nullStr("groceries"),
			FromAccountID:   nullStr("acc-cash"),
			CreatedTS:       ts,
		},
		{
			TransactionID:   "tx-3",
			TransactionDate: civil.Date{Year: 2025, Month: time.February, Day: 28},
			Nature:          "IN",
			Amount:          650000,
			Notes:           nullStr("salary"),
			ToAccountID:     nullStr("acc-main"),
			CreatedTS:       ts,
		},
		{
			TransactionID:   "tx-4",
			TransactionDate: civil.Date{Year: 2025, Month: time.March, Day: 1},
			Nature:          "TF",
			Amount:          50000,
			FromAccountID:   nullStr("acc-main"),
			ToAccountID:     nullStr("acc-cash"),
			CreatedTS:       ts,
		},
		{
			TransactionID:   "tx-5",
			TransactionDate: civil.Date{Year: 2025, Month: time.March, Day: 5},
			Nature:          "DE",
			Amount:          20000,
			PersonID:        nullStr("p-ani"),
			DebtCycle:       nullStr("2025-03"),
			CashbackAmount:  nullFloat(1000),
			CashbackSource:  nullStr("amount"),
			FinalPrice:      nullFloat(19000),
			CreatedTS:       ts,
		},
		{
			TransactionID:   "tx-6",
			TransactionDate: civil.Date{Year: 2025, Month: time.March, Day: 9},
			Nature:          "Debt", // legacy spelling
			Amount:          8000,
			PersonID:        nullStr("p-zara"),
			DebtCycle:       nullStr("2025-03"),
			CreatedTS:       ts,
		},
	}
	for _, row := range transactions {
		_ = s.InsertTransaction(ctx, row)
	}

	return s
}
