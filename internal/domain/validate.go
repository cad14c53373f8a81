package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionInput is the payload validated before any mutation call.
type TransactionInput struct {
	Nature NatureCode
	Date   time.Time
	Amount decimal.Decimal
	Notes  string

	FromAccountID string
	ToAccountID   string
	PersonID      string

	// Cashback is the requested cashback, nil when none was entered.
	Cashback *CashbackRequest

	DebtCycle string
}

// ValidateTransaction checks the nature-dependent participant fields and
// the basic amount constraint. Cashback validation happens separately in
// ComputeCashback so its errors carry the offending cashback field.
func ValidateTransaction(in *TransactionInput) error {
	if !in.Nature.Valid() {
		return validationErrorf("nature", "unknown transaction nature %q", string(in.Nature))
	}
	if in.Amount.Sign() <= 0 {
		return validationErrorf("amount", "amount must be greater than zero")
	}
	if in.Date.IsZero() {
		return validationErrorf("date", "date is required")
	}

	switch in.Nature {
	case NatureExpense:
		if in.FromAccountID == "" {
			return validationErrorf("from_account_id", "an expense requires a source account")
		}
	case NatureIncome:
		if in.ToAccountID == "" {
			return validationErrorf("to_account_id", "an income requires a target account")
		}
	case NatureTransfer:
		if in.FromAccountID == "" || in.ToAccountID == "" {
			return validationErrorf("to_account_id", "a transfer requires both a source and a target account")
		}
		if in.FromAccountID == in.ToAccountID {
			return validationErrorf("to_account_id", "a transfer cannot use the same account on both sides")
		}
	case NatureDebt:
		if in.PersonID == "" {
			return validationErrorf("person_id", "a debt requires a person")
		}
	}

	return nil
}

// ResolveTransactionCashback validates the input and computes its capped
// cashback against the source account's policy. The account is only
// consulted for expenses; other natures never earn cashback from an
// account policy.
func ResolveTransactionCashback(in *TransactionInput, fromAccount *Account) (CashbackResult, error) {
	if err := ValidateTransaction(in); err != nil {
		return CashbackResult{}, err
	}
	if in.Nature != NatureExpense {
		return ComputeCashback(in.Amount, in.Cashback, nil)
	}
	return ComputeAccountCashback(in.Amount, in.Cashback, fromAccount)
}

// CashbackSourceFor tags which input resolved the cashback so later
// aggregation does not double count percent- and amount-entered values.
func CashbackSourceFor(req *CashbackRequest, result CashbackResult) CashbackSource {
	if req == nil || result.Amount.Sign() == 0 {
		return CashbackSourceNone
	}
	if req.Percent.Sign() > 0 {
		return CashbackSourcePercent
	}
	return CashbackSourceAmount
}
