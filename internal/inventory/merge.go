package inventory

import (
	"strings"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/ledger"
	"github.com/atomtax/backoffice/internal/model"
)

// MergeStats summarizes one bulk-merge pass. Malformed incoming rows
// are counted and skipped, never fatal to the batch.
type MergeStats struct {
	Merged            int `json:"merged"`
	Added             int `json:"added"`
	Skipped           int `json:"skipped"`
	DuplicateExpenses int `json:"duplicateExpenses"`
}

// MergeSpreadsheet folds imported partial records into an existing
// item list. Matching is by property name; matched records are merged
// in place, unmatched ones are appended as new items. The input slice
// is not modified.
func MergeSpreadsheet(existing []model.InventoryItem, incoming []model.InventoryItem) ([]model.InventoryItem, MergeStats) {
	out := make([]model.InventoryItem, len(existing))
	for i, it := range existing {
		out[i] = it.Clone()
	}

	var stats MergeStats
	for _, in := range incoming {
		name := strings.TrimSpace(in.PropertyName)
		if name == "" {
			stats.Skipped++
			continue
		}

		matched := false
		for i := range out {
			if out[i].PropertyName == name {
				stats.DuplicateExpenses += mergeInto(&out[i], in)
				stats.Merged++
				matched = true
				break
			}
		}
		if !matched {
			item := in.Clone()
			if item.ProgressStage == "" {
				item.ProgressStage = model.StageUnconfirmed
			}
			refreshDerived(&item)
			out = append(out, item)
			stats.Added++
		}
	}
	return out, stats
}

// MergeExtracted folds a document-extraction result into the item the
// operator has open. Returns the number of suppressed duplicate
// expense rows.
func MergeExtracted(item *model.InventoryItem, extracted model.InventoryItem) int {
	dups := mergeInto(item, extracted)
	return dups
}

// mergeInto applies the shared merge policy: scalar fields are
// overwritten by non-empty incoming values, expense rows are appended
// with (name, amount) duplicate suppression, then the derived fields
// are refreshed.
func mergeInto(dst *model.InventoryItem, in model.InventoryItem) int {
	if s := strings.TrimSpace(in.PropertyName); s != "" {
		dst.PropertyName = s
	}
	if s := strings.TrimSpace(in.Address); s != "" {
		dst.Address = s
	}
	if in.TransferValue != 0 {
		dst.TransferValue = in.TransferValue
	}
	if !in.AcquisitionDate.IsZero() {
		dst.AcquisitionDate = in.AcquisitionDate
	}
	if !in.TransferDate.IsZero() {
		dst.TransferDate = in.TransferDate
	}
	if in.PrepaidIncomeTax != 0 {
		dst.PrepaidIncomeTax = in.PrepaidIncomeTax
	}
	if in.PrepaidLocalTax != 0 {
		dst.PrepaidLocalTax = in.PrepaidLocalTax
	}
	if s := strings.TrimSpace(in.Remarks); s != "" {
		dst.Remarks = s
	}
	if in.Area > 0 {
		dst.Area = in.Area
		dst.Over85 = in.Area > 85
	} else if in.Over85 {
		dst.Over85 = true
	}
	// Expense-ledger totals are derived; only the rows themselves merge.
	dups := appendExpenses(dst, in.Expenses)
	refreshDerived(dst)
	return dups
}

// appendExpenses adds incoming rows that are not exact (name, amount)
// duplicates of rows already on the item. Duplicates are dropped
// silently; the count is surfaced in merge stats. The ledger holds
// ledger.SlotCount rows, so rows arriving past capacity are dropped:
// without the clamp, repeated merges could grow the list beyond what
// the grid renders and the save path keeps.
func appendExpenses(dst *model.InventoryItem, rows []model.ExpenseRow) int {
	dups := 0
	for _, r := range rows {
		if r.Blank() {
			continue
		}
		if hasExpense(dst.Expenses, r) {
			dups++
			continue
		}
		if len(dst.Expenses) >= ledger.SlotCount {
			continue
		}
		r.SeqNo = len(dst.Expenses) + 1
		if r.Category == "" {
			r.Category = model.CategoryAcquisition
		}
		if r.ProvisionalApproved == "" {
			r.ProvisionalApproved = model.Approved
		}
		if r.FinalApproved == "" {
			r.FinalApproved = model.Approved
		}
		dst.Expenses = append(dst.Expenses, r)
	}
	return dups
}

func hasExpense(rows []model.ExpenseRow, candidate model.ExpenseRow) bool {
	for _, r := range rows {
		if r.Name == candidate.Name && r.Amount == candidate.Amount {
			return true
		}
	}
	return false
}

// refreshDerived re-runs the ledger aggregation when the item carries
// expense rows, recomputes the filing deadline from the transfer date,
// and rederives transfer income.
func refreshDerived(item *model.InventoryItem) {
	if len(item.Expenses) > 0 {
		totals := ledger.Aggregate(item.Expenses)
		item.AcquisitionValue = totals.Acquisition
		item.OtherExpenses = totals.OtherExpense
	}
	item.ReportDeadline = dateutil.FilingDeadline(item.TransferDate)
	Recompute(item)
}
