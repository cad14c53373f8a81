package domain

import "github.com/shopspring/decimal"

// CashbackRequest is the user-entered cashback for a transaction.
// Percent is on a 0-100 scale, Amount in currency units.
type CashbackRequest struct {
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// CashbackPolicy is an account-level cap on earned cashback. Nil fields
// impose no cap beyond the transaction amount itself.
type CashbackPolicy struct {
	// PercentLimit is on a 0-100 scale.
	PercentLimit *decimal.Decimal
	// MaxAmount is an absolute currency cap.
	MaxAmount *decimal.Decimal
}

// CashbackResult is the normalized cashback for a transaction.
type CashbackResult struct {
	// Percent is the effective percent implied by Amount, 0-100 scale,
	// rounded to two decimal places.
	Percent decimal.Decimal
	// Amount is the capped cashback, rounded to whole currency units.
	Amount decimal.Decimal
	// FinalPrice is the transaction amount minus Amount, never negative.
	FinalPrice decimal.Decimal
}

var (
	decHundred = decimal.NewFromInt(100)
)

// ComputeCashback resolves the requested cashback against the account
// policy. Both a percent cap and an absolute cap can be binding, and they
// are expressed in different units, so the resolution runs two passes
// (percent -> amount -> percent -> amount) to reach a value that respects
// both caps simultaneously.
//
// Out-of-range requests are validation errors, not silent clamps: they
// surface to the caller before any computation.
func ComputeCashback(amount decimal.Decimal, requested *CashbackRequest, policy *CashbackPolicy) (CashbackResult, error) {
	if amount.Sign() <= 0 {
		return CashbackResult{}, validationErrorf("amount", "transaction amount must be greater than zero")
	}

	if requested == nil {
		return CashbackResult{
			Percent:    decimal.Zero,
			Amount:     decimal.Zero,
			FinalPrice: amount,
		}, nil
	}

	if requested.Percent.Sign() < 0 || requested.Percent.GreaterThan(decHundred) {
		return CashbackResult{}, validationErrorf("cashback_percent", "cashback percent must be between 0 and 100, got %s", requested.Percent)
	}
	if requested.Amount.Sign() < 0 {
		return CashbackResult{}, validationErrorf("cashback_amount", "cashback amount cannot be negative, got %s", requested.Amount)
	}
	if requested.Amount.GreaterThan(amount) {
		return CashbackResult{}, validationErrorf("cashback_amount", "cashback amount %s exceeds transaction amount %s", requested.Amount, amount)
	}

	basePercent := clampDecimal(requested.Percent, decimal.Zero, decHundred)
	baseAmount := clampDecimal(requested.Amount, decimal.Zero, amount)

	allowedAmount := amount
	normalizedAmount := baseAmount
	normalizedPercent := basePercent

	if policy != nil {
		amountLimitFromPercent := amount
		percentLimit := decHundred
		if policy.PercentLimit != nil {
			percentLimit = *policy.PercentLimit
			amountLimitFromPercent = percentLimit.Div(decHundred).Mul(amount)
		}
		amountLimitFromMax := amount
		if policy.MaxAmount != nil {
			amountLimitFromMax = *policy.MaxAmount
		}

		allowedAmount = clampDecimal(
			decimal.Min(amountLimitFromPercent, amountLimitFromMax, amount),
			decimal.Zero, amount)

		// First pass: resolve in currency units.
		candidateAmount := decimal.Min(baseAmount, basePercent.Div(decHundred).Mul(amount), amount)
		constrainedAmount := clampDecimal(candidateAmount, decimal.Zero, allowedAmount)

		// Second pass: re-derive the percent implied by the constrained
		// amount and clamp it against the tighter percent cap, then map
		// back to currency units.
		allowedPercent := allowedAmount.Div(amount).Mul(decHundred)
		effectivePercent := constrainedAmount.Div(amount).Mul(decHundred)
		effectivePercent = clampDecimal(effectivePercent, decimal.Zero, decimal.Min(percentLimit, allowedPercent))

		normalizedAmount = clampDecimal(effectivePercent.Div(decHundred).Mul(amount), decimal.Zero, allowedAmount)
		normalizedPercent = effectivePercent
	}

	// Round to whole currency units, then re-clamp: rounding up could
	// otherwise breach the amount or the rounded allowed ceiling.
	rounded := normalizedAmount.Round(0)
	rounded = clampDecimal(rounded, decimal.Zero, amount)
	rounded = clampDecimal(rounded, decimal.Zero, allowedAmount.Round(0))

	if amount.Sign() > 0 {
		normalizedPercent = rounded.Div(amount).Mul(decHundred).Round(2)
	} else {
		normalizedPercent = decimal.Zero
	}

	finalPrice := amount.Sub(rounded)
	if finalPrice.Sign() < 0 {
		finalPrice = decimal.Zero
	}

	return CashbackResult{
		Percent:    normalizedPercent,
		Amount:     rounded,
		FinalPrice: finalPrice,
	}, nil
}

// ComputeAccountCashback resolves cashback against an account's stored
// policy. A nil account applies no policy. A cashback-ineligible account
// never reaches the policy math: the cashback is forced to zero.
func ComputeAccountCashback(amount decimal.Decimal, requested *CashbackRequest, account *Account) (CashbackResult, error) {
	if account == nil {
		return ComputeCashback(amount, requested, nil)
	}
	if !account.IsCashbackEligible {
		return ComputeCashback(amount, nil, nil)
	}

	policy := &CashbackPolicy{MaxAmount: account.MaxCashbackAmount}
	if account.CashbackPercentage != nil {
		// The account stores a fractional rate; the policy works on the
		// 0-100 scale.
		limit := account.CashbackPercentage.Mul(decHundred)
		policy.PercentLimit = &limit
	}
	return ComputeCashback(amount, requested, policy)
}

func clampDecimal(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
