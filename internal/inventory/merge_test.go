package inventory

import (
	"fmt"
	"testing"
	"time"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/ledger"
	"github.com/atomtax/backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSpreadsheetMatchesByPropertyName(t *testing.T) {
	existing := []model.InventoryItem{
		{
			ID:            "item-1",
			PropertyName:  "서울시 강남구 아파트",
			Address:       "기존 주소",
			TransferValue: 100_000_000,
		},
	}
	incoming := []model.InventoryItem{
		{
			PropertyName:  "서울시 강남구 아파트",
			TransferValue: 150_000_000,
			TransferDate:  dateutil.Date{Year: 2025, Month: time.January, Day: 15},
		},
		{
			PropertyName:  "부산시 해운대구 오피스텔",
			TransferValue: 80_000_000,
		},
	}

	merged, stats := MergeSpreadsheet(existing, incoming)

	require.Len(t, merged, 2)
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 0, stats.Skipped)

	// Matched item: scalar overwritten, identity kept, deadline derived.
	assert.Equal(t, "item-1", merged[0].ID)
	assert.Equal(t, int64(150_000_000), merged[0].TransferValue)
	assert.Equal(t, "기존 주소", merged[0].Address, "empty incoming scalar must not clobber")
	assert.Equal(t, dateutil.Date{Year: 2025, Month: time.March, Day: 31}, merged[0].ReportDeadline)

	// New item appended with defaults.
	assert.Equal(t, model.StageUnconfirmed, merged[1].ProgressStage)
}

func TestMergeSpreadsheetSkipsBlankPropertyName(t *testing.T) {
	incoming := []model.InventoryItem{
		{PropertyName: "  "},
		{PropertyName: ""},
		{PropertyName: "물건A"},
	}
	merged, stats := MergeSpreadsheet(nil, incoming)
	assert.Len(t, merged, 1)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Added)
}

func TestMergeSpreadsheetDoesNotMutateInput(t *testing.T) {
	existing := []model.InventoryItem{{ID: "a", PropertyName: "물건A", TransferValue: 1}}
	incoming := []model.InventoryItem{{PropertyName: "물건A", TransferValue: 2}}

	merged, _ := MergeSpreadsheet(existing, incoming)
	assert.Equal(t, int64(1), existing[0].TransferValue)
	assert.Equal(t, int64(2), merged[0].TransferValue)
}

func TestMergeExtractedDuplicateSuppression(t *testing.T) {
	item := model.InventoryItem{
		PropertyName: "물건A",
		Expenses: []model.ExpenseRow{
			{SeqNo: 1, Name: "등기비", Category: model.CategoryOtherExpense, Amount: 4_439_530, ProvisionalApproved: model.Approved},
		},
	}
	extracted := model.InventoryItem{
		Expenses: []model.ExpenseRow{
			{Name: "등기비", Category: model.CategoryOtherExpense, Amount: 4_439_530},
			{Name: "중개수수료", Category: model.CategoryOtherExpense, Amount: 0},
		},
	}

	dups := MergeExtracted(&item, extracted)

	assert.Equal(t, 1, dups)
	require.Len(t, item.Expenses, 2)
	assert.Equal(t, "등기비", item.Expenses[0].Name)
	assert.Equal(t, "중개수수료", item.Expenses[1].Name)
	assert.Equal(t, 2, item.Expenses[1].SeqNo)
	// Appended row picks up grid defaults.
	assert.Equal(t, model.Approved, item.Expenses[1].ProvisionalApproved)
}

func TestMergeExtractedRefreshesDerivedFields(t *testing.T) {
	item := model.InventoryItem{PropertyName: "물건A", TransferValue: 300_000_000}
	extracted := model.InventoryItem{
		Area: 112.3,
		Expenses: []model.ExpenseRow{
			{Name: "취득가액", Category: model.CategoryAcquisition, Amount: 256_900_000, ProvisionalApproved: model.Approved},
			{Name: "등기비", Category: model.CategoryOtherExpense, Amount: 4_439_530, ProvisionalApproved: model.Approved},
		},
	}

	MergeExtracted(&item, extracted)

	assert.Equal(t, int64(256_900_000), item.AcquisitionValue)
	assert.Equal(t, int64(4_439_530), item.OtherExpenses)
	assert.Equal(t, int64(300_000_000-256_900_000-4_439_530), item.TransferIncome)
	assert.True(t, item.Over85)
	assert.InDelta(t, 112.3, item.Area, 0.001)
}

func TestMergeExtractedStopsAtLedgerCapacity(t *testing.T) {
	var item model.InventoryItem
	for i := 0; i < 9; i++ {
		item.Expenses = append(item.Expenses, model.ExpenseRow{
			SeqNo:               i + 1,
			Name:                fmt.Sprintf("비용%d", i+1),
			Category:            model.CategoryOtherExpense,
			Amount:              int64(i + 1),
			ProvisionalApproved: model.Approved,
		})
	}
	extracted := model.InventoryItem{
		Expenses: []model.ExpenseRow{
			{Name: "추가1", Amount: 100},
			{Name: "추가2", Amount: 200},
			{Name: "비용1", Amount: 1}, // duplicate, still counted past capacity
		},
	}

	dups := MergeExtracted(&item, extracted)

	assert.Equal(t, 1, dups)
	require.Len(t, item.Expenses, ledger.SlotCount)
	assert.Equal(t, "추가1", item.Expenses[9].Name)
}

func TestMergeExtractedSameNameDifferentAmountKept(t *testing.T) {
	item := model.InventoryItem{
		Expenses: []model.ExpenseRow{
			{SeqNo: 1, Name: "취득세 등", Category: model.CategoryAcquisition, Amount: 5_000_000, ProvisionalApproved: model.Approved},
		},
	}
	extracted := model.InventoryItem{
		Expenses: []model.ExpenseRow{
			{Name: "취득세 등", Category: model.CategoryAcquisition, Amount: 5_100_000},
		},
	}

	dups := MergeExtracted(&item, extracted)
	assert.Equal(t, 0, dups)
	assert.Len(t, item.Expenses, 2, "only exact (name, amount) pairs are duplicates")
}
