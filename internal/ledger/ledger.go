// Package ledger implements the per-property necessary-expense grid:
// a fixed block of ten rows, approval-gated aggregation into the two
// cost totals, and the blank-row filtering applied on save.
package ledger

import "github.com/atomtax/backoffice/internal/model"

// SlotCount is the number of rows the expense grid materializes up
// front, whether or not they hold data.
const SlotCount = 10

// BlankRow returns an unused slot with the grid defaults: acquisition
// category and both approval flags set to O.
func BlankRow(seqNo int) model.ExpenseRow {
	return model.ExpenseRow{
		SeqNo:               seqNo,
		Category:            model.CategoryAcquisition,
		ProvisionalApproved: model.Approved,
		FinalApproved:       model.Approved,
	}
}

// Materialize expands saved rows into the full ten-slot grid: saved
// data first, blank slots after, sequence numbers matching position.
// Saved rows beyond the capacity are dropped.
func Materialize(saved []model.ExpenseRow) []model.ExpenseRow {
	rows := make([]model.ExpenseRow, SlotCount)
	for i := range rows {
		if i < len(saved) {
			rows[i] = saved[i]
			rows[i].SeqNo = i + 1
			if rows[i].Category == "" {
				rows[i].Category = model.CategoryAcquisition
			}
			if rows[i].ProvisionalApproved == "" {
				rows[i].ProvisionalApproved = model.Approved
			}
			if rows[i].FinalApproved == "" {
				rows[i].FinalApproved = model.Approved
			}
		} else {
			rows[i] = BlankRow(i + 1)
		}
	}
	return rows
}

// ClearSlot resets one slot to blank in place.
func ClearSlot(rows []model.ExpenseRow, i int) {
	if i < 0 || i >= len(rows) {
		return
	}
	rows[i] = BlankRow(i + 1)
}

// Totals holds the two aggregation buckets.
type Totals struct {
	Acquisition  int64 `json:"acquisitionTotal"`
	OtherExpense int64 `json:"otherExpenseTotal"`
}

// Aggregate sums approved rows into the acquisition and other-expense
// buckets. A row contributes only when it has a name, its provisional
// approval flag is O, and its category is one of the two valid buckets.
func Aggregate(rows []model.ExpenseRow) Totals {
	var t Totals
	for _, r := range rows {
		if r.Blank() || !r.ProvisionalApproved.Approved() {
			continue
		}
		switch r.Category {
		case model.CategoryAcquisition:
			t.Acquisition += r.Amount
		case model.CategoryOtherExpense:
			t.OtherExpense += r.Amount
		}
	}
	return t
}

// FilterBlank drops unused slots and renumbers the remainder. This is
// what persists: blank slots exist only while the grid is open.
func FilterBlank(rows []model.ExpenseRow) []model.ExpenseRow {
	out := make([]model.ExpenseRow, 0, len(rows))
	for _, r := range rows {
		if r.Blank() {
			continue
		}
		r.SeqNo = len(out) + 1
		out = append(out, r)
	}
	return out
}
