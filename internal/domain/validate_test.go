package domain

import (
	"testing"
	"time"
)

func validInput(nature NatureCode) *TransactionInput {
	in := &TransactionInput{
		Nature: nature,
		Date:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Amount: dec("1000"),
	}
	switch nature {
	case NatureExpense:
		in.FromAccountID = "acc1"
	case NatureIncome:
		in.ToAccountID = "acc1"
	case NatureTransfer:
		in.FromAccountID = "acc1"
		in.ToAccountID = "acc2"
	case NatureDebt:
		in.PersonID = "p1"
	}
	return in
}

func TestValidateTransaction(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*TransactionInput)
		nature    NatureCode
		wantField string
	}{
		{"valid expense", func(in *TransactionInput) {}, NatureExpense, ""},
		{"valid income", func(in *TransactionInput) {}, NatureIncome, ""},
		{"valid transfer", func(in *TransactionInput) {}, NatureTransfer, ""},
		{"valid debt", func(in *TransactionInput) {}, NatureDebt, ""},
		{"unknown nature", func(in *TransactionInput) { in.Nature = "XX" }, NatureExpense, "nature"},
		{"zero amount", func(in *TransactionInput) { in.Amount = dec("0") }, NatureExpense, "amount"},
		{"negative amount", func(in *TransactionInput) { in.Amount = dec("-5") }, NatureExpense, "amount"},
		{"missing date", func(in *TransactionInput) { in.Date = time.Time{} }, NatureExpense, "date"},
		{"expense without source account", func(in *TransactionInput) { in.FromAccountID = "" }, NatureExpense, "from_account_id"},
		{"income without target account", func(in *TransactionInput) { in.ToAccountID = "" }, NatureIncome, "to_account_id"},
		{"transfer missing target", func(in *TransactionInput) { in.ToAccountID = "" }, NatureTransfer, "to_account_id"},
		{"transfer same account both sides", func(in *TransactionInput) { in.ToAccountID = in.FromAccountID }, NatureTransfer, "to_account_id"},
		{"debt without person", func(in *TransactionInput) { in.PersonID = "" }, NatureDebt, "person_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(tt.nature)
			tt.mutate(in)

			err := ValidateTransaction(in)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateTransaction() = %v, want nil", err)
				}
				return
			}

			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("ValidateTransaction() = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("validation field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestResolveTransactionCashback(t *testing.T) {
	account := &Account{
		ID:                 "acc1",
		IsCashbackEligible: true,
		CashbackPercentage: decPtr("0.05"),
		MaxCashbackAmount:  decPtr("3000"),
	}

	t.Run("expense uses account policy", func(t *testing.T) {
		in := validInput(NatureExpense)
		in.Amount = dec("100000")
		in.Cashback = &CashbackRequest{Percent: dec("10"), Amount: dec("8000")}

		got, err := ResolveTransactionCashback(in, account)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if !got.Amount.Equal(dec("3000")) {
			t.Errorf("amount = %s, want 3000", got.Amount)
		}
	})

	t.Run("debt ignores account policy", func(t *testing.T) {
		in := validInput(NatureDebt)
		in.Amount = dec("100000")
		in.Cashback = &CashbackRequest{Percent: dec("0"), Amount: dec("8000")}

		got, err := ResolveTransactionCashback(in, account)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if !got.Amount.Equal(dec("8000")) {
			t.Errorf("amount = %s, want uncapped 8000", got.Amount)
		}
	})

	t.Run("invalid participant reported before cashback math", func(t *testing.T) {
		in := validInput(NatureExpense)
		in.FromAccountID = ""
		in.Cashback = &CashbackRequest{Percent: dec("200"), Amount: dec("0")}

		_, err := ResolveTransactionCashback(in, account)
		verr, ok := AsValidationError(err)
		if !ok || verr.Field != "from_account_id" {
			t.Fatalf("error = %v, want from_account_id validation", err)
		}
	})
}

func TestCashbackSourceFor(t *testing.T) {
	res := CashbackResult{Amount: dec("100")}
	zero := CashbackResult{}

	tests := []struct {
		name   string
		req    *CashbackRequest
		result CashbackResult
		want   CashbackSource
	}{
		{"nil request", nil, res, CashbackSourceNone},
		{"zero result", &CashbackRequest{Percent: dec("5")}, zero, CashbackSourceNone},
		{"percent entered", &CashbackRequest{Percent: dec("5"), Amount: dec("100")}, res, CashbackSourcePercent},
		{"amount only", &CashbackRequest{Amount: dec("100")}, res, CashbackSourceAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CashbackSourceFor(tt.req, tt.result); got != tt.want {
				t.Errorf("CashbackSourceFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
