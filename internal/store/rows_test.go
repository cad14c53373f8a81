package store

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/tigranv/moneta/internal/domain"
)

func TestAccountRowToDomain(t *testing.T) {
	row := &AccountRow{
		AccountID:          "acc1",
		Name:               "Platinum",
		AccountType:        bigquery.NullString{StringVal: "credit", Valid: true},
		IsCashbackEligible: true,
		CashbackPercentage: bigquery.NullFloat64{Float64: 0.05, Valid: true},
		MaxCashbackAmount:  bigquery.NullFloat64{Float64: 3000, Valid: true},
	}

	acc := row.ToDomain()
	if acc.ID != "acc1" || acc.Name != "Platinum" || acc.Type != "credit" {
		t.Errorf("account = %+v", acc)
	}
	if !acc.IsCashbackEligible {
		t.Errorf("eligibility not carried")
	}
	if acc.CashbackPercentage == nil || !acc.CashbackPercentage.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("cashback percentage = %v", acc.CashbackPercentage)
	}
	if acc.CreditLimit != nil {
		t.Errorf("null credit limit should stay nil")
	}
}

func TestTransactionRowRoundTrip(t *testing.T) {
	in := &domain.TransactionInput{
		Nature:        domain.NatureExpense,
		Date:          time.Date(2025, time.April, 12, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("100000"),
		Notes:         "laptop",
		FromAccountID: "acc1",
		Cashback:      &domain.CashbackRequest{Percent: decimal.RequireFromString("10"), Amount: decimal.RequireFromString("8000")},
	}
	cb := domain.CashbackResult{
		Percent:    decimal.RequireFromString("3"),
		Amount:     decimal.RequireFromString("3000"),
		FinalPrice: decimal.RequireFromString("97000"),
	}

	row := NewTransactionRow("tx1", in, cb, domain.CashbackSourcePercent)
	if row.TransactionID != "tx1" || row.Nature != "EX" || row.Amount != 100000 {
		t.Fatalf("row = %+v", row)
	}
	if row.TransactionDate != civil.DateOf(in.Date) {
		t.Errorf("date = %v", row.TransactionDate)
	}
	if !row.FinalPrice.Valid || row.FinalPrice.Float64 != 97000 {
		t.Errorf("final price = %+v", row.FinalPrice)
	}

	tx := row.ToDomain(nil)
	if tx.Nature != domain.NatureExpense || tx.FromAccountID != "acc1" {
		t.Errorf("domain tx = %+v", tx)
	}
	if tx.FinalPrice == nil || !tx.FinalPrice.Equal(cb.FinalPrice) {
		t.Errorf("domain final price = %v", tx.FinalPrice)
	}
	if tx.CashbackSource != domain.CashbackSourcePercent {
		t.Errorf("cashback source = %q", tx.CashbackSource)
	}
}

func TestTransactionRowLegacyNature(t *testing.T) {
	row := &TransactionRow{TransactionID: "tx1", Nature: "Expenses", Amount: 10}
	if got := row.ToDomain(nil).Nature; got != domain.NatureExpense {
		t.Errorf("legacy spelling resolved to %q, want EX", got)
	}

	unknown := &TransactionRow{TransactionID: "tx2", Nature: "???", Amount: 10}
	if got := unknown.ToDomain(nil).Nature; got != domain.NatureExpense {
		t.Errorf("unknown nature should default to expense, got %q", got)
	}
}

func TestResolveCategoryNature(t *testing.T) {
	parent := &CategoryRow{CategoryID: "c1", Name: "Salary",
		Nature: bigquery.NullString{StringVal: "Income", Valid: true}}
	sub := &CategoryRow{CategoryID: "c2", Name: "Bonus",
		ParentCategoryID: bigquery.NullString{StringVal: "c1", Valid: true}}
	own := &CategoryRow{CategoryID: "c3", Name: "Refunds",
		Nature:           bigquery.NullString{StringVal: "IN", Valid: true},
		ParentCategoryID: bigquery.NullString{StringVal: "missing", Valid: true}}

	all := []*CategoryRow{parent, sub, own}

	if code, ok := ResolveCategoryNature(sub, all); !ok || code != domain.NatureIncome {
		t.Errorf("subcategory nature = (%q, %v), want inherited IN", code, ok)
	}
	if code, ok := ResolveCategoryNature(own, all); !ok || code != domain.NatureIncome {
		t.Errorf("own nature = (%q, %v), want IN", code, ok)
	}
	orphan := &CategoryRow{CategoryID: "c4", Name: "Mystery"}
	if _, ok := ResolveCategoryNature(orphan, all); ok {
		t.Errorf("orphan with no nature should be unknown")
	}
}

func TestUpstreamMessage(t *testing.T) {
	withMsg := Upstreamf("ListAccounts", errors.New("rpc closed"), "accounts are unavailable")
	if got := UpstreamMessage(withMsg); got != "accounts are unavailable" {
		t.Errorf("UpstreamMessage = %q", got)
	}

	bare := Upstream("ListAccounts", errors.New("rpc closed"))
	if got := UpstreamMessage(bare); got != genericUpstreamMessage {
		t.Errorf("UpstreamMessage(no detail) = %q, want generic fallback", got)
	}

	if got := UpstreamMessage(errors.New("plain")); got != genericUpstreamMessage {
		t.Errorf("UpstreamMessage(foreign error) = %q, want generic fallback", got)
	}
	if got := UpstreamMessage(nil); got != "" {
		t.Errorf("UpstreamMessage(nil) = %q, want empty", got)
	}
}

func TestParseBulkPolicy(t *testing.T) {
	if ParseBulkPolicy("continue") != BulkContinueOnError {
		t.Errorf(`ParseBulkPolicy("continue") should continue`)
	}
	for _, s := range []string{"stop", "", "anything"} {
		if ParseBulkPolicy(s) != BulkStopOnFirstError {
			t.Errorf("ParseBulkPolicy(%q) should default to stop", s)
		}
	}
}

func TestResultOf(t *testing.T) {
	ok := ResultOf("id1", nil)
	if !ok.Success || ok.ID != "id1" {
		t.Errorf("ResultOf(nil err) = %+v", ok)
	}

	fail := ResultOf("", Upstreamf("InsertAccount", errors.New("boom"), "insert rejected"))
	if fail.Success || fail.Message != "insert rejected" {
		t.Errorf("ResultOf(err) = %+v", fail)
	}
}
