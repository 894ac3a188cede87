package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/finsoc/splitledger/internal/models"
)

// Outstanding is what a member still owes: share − paid. Negative when the
// member has overpaid their share.
func Outstanding(m models.BillMember) decimal.Decimal {
	return m.Share.Sub(m.Paid)
}

// MemberSettled reports whether the member has paid at least their full share.
// Payments only increase paid, so a settled member never becomes unsettled.
func MemberSettled(m models.BillMember) bool {
	return m.Paid.GreaterThanOrEqual(m.Share)
}

// BillSettled reports whether every member of the bill has paid their share.
// It is recomputed from the member rows on every read, never cached.
func BillSettled(members []models.BillMember) bool {
	for _, m := range members {
		if !MemberSettled(m) {
			return false
		}
	}
	return true
}

// AppliedTotal sums the amounts a set of bill-transaction links applied.
func AppliedTotal(links []models.BillTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range links {
		sum = sum.Add(l.AmountApplied)
	}
	return sum
}

// Remaining is the unallocated portion of a transaction's amount across all
// bills referencing it: amount − Σ amount_applied.
func Remaining(amount decimal.Decimal, links []models.BillTransaction) decimal.Decimal {
	return amount.Sub(AppliedTotal(links))
}

// ShareTotal sums the members' shares. Within memberCount−1 cents of the bill
// total under half-up rounding.
func ShareTotal(members []models.BillMember) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range members {
		sum = sum.Add(m.Share)
	}
	return sum
}
