package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PersonAggregate is the per-person fold of the transaction set. It is
// recomputed on every read and never persisted.
type PersonAggregate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`

	// Transactions holds the person's history, newest first.
	Transactions []Transaction `json:"transactions"`

	TotalTransactions int             `json:"total_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalBack         decimal.Decimal `json:"total_back"`
	TotalFinalPrice   decimal.Decimal `json:"total_final_price"`

	LastTransactionDate time.Time `json:"last_transaction_date"`
}

// AggregatePeople folds transactions into per-person running totals.
// The fold is order-independent over its input and does not mutate it;
// output is sorted by person name. Transactions with neither a person id
// nor a person name are skipped.
func AggregatePeople(txs []Transaction) []PersonAggregate {
	byKey := make(map[string]*PersonAggregate)

	for _, tx := range txs {
		id := tx.PersonID
		name := ""
		image := ""
		if tx.Person != nil {
			name = tx.Person.Name
			image = tx.Person.Image
			if id == "" {
				id = tx.Person.ID
			}
		}
		if id == "" && name == "" {
			continue
		}

		key := id
		if key == "" {
			key = "name:" + name
		}

		agg, ok := byKey[key]
		if !ok {
			agg = &PersonAggregate{
				ID:          id,
				Name:        name,
				Image:       image,
				TotalAmount: decimal.Zero,
				TotalBack:   decimal.Zero,
			}
			byKey[key] = agg
		}

		agg.Transactions = append(agg.Transactions, tx)
		agg.TotalTransactions++
		agg.TotalAmount = agg.TotalAmount.Add(tx.Amount)
		agg.TotalBack = agg.TotalBack.Add(cashbackContribution(&tx))
		agg.TotalFinalPrice = agg.TotalFinalPrice.Add(tx.EffectiveFinalPrice())

		// Display fields stay with the first-seen entry; the timestamp
		// alone takes the max.
		if tx.Date.After(agg.LastTransactionDate) {
			agg.LastTransactionDate = tx.Date
		}
		if agg.Name == "" && name != "" {
			agg.Name = name
		}
		if agg.Image == "" && image != "" {
			agg.Image = image
		}
	}

	out := make([]PersonAggregate, 0, len(byKey))
	for _, agg := range byKey {
		sortTransactionsByDateDesc(agg.Transactions)
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// cashbackContribution is the transaction's share of TotalBack. The
// stored cashback amount is authoritative for both source tags: for
// percent-sourced cashback the amount field already holds the resolved
// value, so the percent contributes nothing on top of it. Untagged rows
// contribute zero.
func cashbackContribution(tx *Transaction) decimal.Decimal {
	switch tx.CashbackSource {
	case CashbackSourcePercent:
		return tx.CashbackAmount
	case CashbackSourceAmount:
		return tx.CashbackAmount
	default:
		return decimal.Zero
	}
}

func sortTransactionsByDateDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
}
