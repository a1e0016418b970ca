// Package inventory is the record engine for trader properties: typed
// field mutations with derived-field recomputation, the expense-ledger
// save path, and the merge policies for bulk imports.
//
// Every operation here is synchronous and touches exactly one record;
// persistence is a separate, explicit step performed by the caller.
package inventory

import (
	"encoding/json"
	"fmt"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/ledger"
	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/numfmt"
)

// NewItem returns a blank property row for a client. ordinal is the
// 1-based position in the client's list, used for the placeholder name.
func NewItem(clientID string, ordinal int) model.InventoryItem {
	return model.InventoryItem{
		ClientID:      clientID,
		PropertyName:  fmt.Sprintf("물건%d", ordinal),
		ProgressStage: model.StageUnconfirmed,
		Expenses:      []model.ExpenseRow{},
	}
}

// Recompute rederives transfer income from the current transfer value,
// acquisition value and other expenses. It runs after every mutation;
// transfer income is never edited directly.
func Recompute(item *model.InventoryItem) {
	item.TransferIncome = item.TransferValue - item.AcquisitionValue - item.OtherExpenses
}

// Mutation is one typed field edit. Exactly one variant exists per
// editable field; derived fields have no variant.
type Mutation interface {
	apply(*model.InventoryItem) error
}

// Apply runs one mutation and unconditionally recomputes the derived
// fields. On error the item is left with the offending field unset and
// everything else untouched.
func Apply(item *model.InventoryItem, m Mutation) error {
	err := m.apply(item)
	Recompute(item)
	return err
}

type SetPropertyName struct{ Name string }
type SetAddress struct{ Address string }
type SetArea struct{ Area float64 }
type SetTransferValue struct{ Amount int64 }
type SetAcquisitionDate struct{ Raw string }
type SetTransferDate struct{ Raw string }
type SetPrepaidIncomeTax struct{ Amount int64 }
type SetPrepaidLocalTax struct{ Amount int64 }
type SetOver85 struct{ Over bool }
type SetComparativeTax struct{ Comparative bool }
type SetProgressStage struct{ Stage model.ProgressStage }
type SetRemarks struct{ Remarks string }

func (m SetPropertyName) apply(it *model.InventoryItem) error {
	it.PropertyName = m.Name
	return nil
}

func (m SetAddress) apply(it *model.InventoryItem) error {
	it.Address = m.Address
	return nil
}

// SetArea also derives the over-85 classification flag.
func (m SetArea) apply(it *model.InventoryItem) error {
	it.Area = m.Area
	it.Over85 = m.Area > 85
	return nil
}

func (m SetTransferValue) apply(it *model.InventoryItem) error {
	it.TransferValue = m.Amount
	return nil
}

func (m SetAcquisitionDate) apply(it *model.InventoryItem) error {
	if m.Raw == "" {
		it.AcquisitionDate = dateutil.Date{}
		return nil
	}
	d, err := dateutil.ParseFixed(m.Raw)
	if err != nil {
		it.AcquisitionDate = dateutil.Date{}
		return err
	}
	it.AcquisitionDate = d
	return nil
}

// SetTransferDate keeps the filing deadline in lockstep with the
// transfer date. A cleared or rejected date clears the deadline too.
func (m SetTransferDate) apply(it *model.InventoryItem) error {
	if m.Raw == "" {
		it.TransferDate = dateutil.Date{}
		it.ReportDeadline = dateutil.Date{}
		return nil
	}
	d, err := dateutil.ParseFixed(m.Raw)
	if err != nil {
		it.TransferDate = dateutil.Date{}
		it.ReportDeadline = dateutil.Date{}
		return err
	}
	it.TransferDate = d
	it.ReportDeadline = dateutil.FilingDeadline(d)
	return nil
}

func (m SetPrepaidIncomeTax) apply(it *model.InventoryItem) error {
	it.PrepaidIncomeTax = m.Amount
	return nil
}

func (m SetPrepaidLocalTax) apply(it *model.InventoryItem) error {
	it.PrepaidLocalTax = m.Amount
	return nil
}

func (m SetOver85) apply(it *model.InventoryItem) error {
	it.Over85 = m.Over
	return nil
}

func (m SetComparativeTax) apply(it *model.InventoryItem) error {
	it.ComparativeTax = m.Comparative
	return nil
}

func (m SetProgressStage) apply(it *model.InventoryItem) error {
	if !m.Stage.Valid() {
		return fmt.Errorf("unknown progress stage %q", m.Stage)
	}
	it.ProgressStage = m.Stage
	return nil
}

func (m SetRemarks) apply(it *model.InventoryItem) error {
	it.Remarks = m.Remarks
	return nil
}

// Decode maps a wire-level field edit onto its mutation variant. This
// is the only place field names exist as strings; everything past it
// is typed.
func Decode(field string, value json.RawMessage) (Mutation, error) {
	switch field {
	case "propertyName":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("propertyName: %w", err)
		}
		return SetPropertyName{Name: s}, nil
	case "address":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("address: %w", err)
		}
		return SetAddress{Address: s}, nil
	case "area":
		var f float64
		if err := json.Unmarshal(value, &f); err != nil {
			return nil, fmt.Errorf("area: %w", err)
		}
		return SetArea{Area: f}, nil
	case "transferValue":
		n, err := decodeAmount(value)
		if err != nil {
			return nil, fmt.Errorf("transferValue: %w", err)
		}
		return SetTransferValue{Amount: n}, nil
	case "acquisitionDate":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("acquisitionDate: %w", err)
		}
		return SetAcquisitionDate{Raw: s}, nil
	case "transferDate":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("transferDate: %w", err)
		}
		return SetTransferDate{Raw: s}, nil
	case "prepaidIncomeTax":
		n, err := decodeAmount(value)
		if err != nil {
			return nil, fmt.Errorf("prepaidIncomeTax: %w", err)
		}
		return SetPrepaidIncomeTax{Amount: n}, nil
	case "prepaidLocalTax":
		n, err := decodeAmount(value)
		if err != nil {
			return nil, fmt.Errorf("prepaidLocalTax: %w", err)
		}
		return SetPrepaidLocalTax{Amount: n}, nil
	case "over85":
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return nil, fmt.Errorf("over85: %w", err)
		}
		return SetOver85{Over: b}, nil
	case "comparativeTax":
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return nil, fmt.Errorf("comparativeTax: %w", err)
		}
		return SetComparativeTax{Comparative: b}, nil
	case "progressStage":
		var s model.ProgressStage
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("progressStage: %w", err)
		}
		return SetProgressStage{Stage: s}, nil
	case "remarks":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("remarks: %w", err)
		}
		return SetRemarks{Remarks: s}, nil
	}
	return nil, fmt.Errorf("unknown or read-only field %q", field)
}

// decodeAmount accepts both JSON numbers and comma-grouped strings,
// since amount cells post back in display form.
func decodeAmount(value json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(value, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, err
	}
	return numfmt.ParseThousands(s), nil
}

// SaveExpenses is the ledger save path: blank rows are dropped, the
// remainder replaces the item's expense list, and the approval-gated
// totals land in the acquisition and other-expense fields before
// transfer income is rederived.
func SaveExpenses(item *model.InventoryItem, rows []model.ExpenseRow) {
	item.Expenses = ledger.FilterBlank(rows)
	totals := ledger.Aggregate(item.Expenses)
	item.AcquisitionValue = totals.Acquisition
	item.OtherExpenses = totals.OtherExpense
	Recompute(item)
}
