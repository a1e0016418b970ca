// Package spreadsheet reads and writes the two-sheet Excel workbook
// the firm uses for bulk property entry: 물건목록 (property list) and
// 필요경비상세 (expense detail, keyed back to properties by name).
//
// Header matching tolerates the aliases that appear across workbook
// generations; rows missing their key field are skipped and counted,
// never fatal to the batch.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/numfmt"
)

const (
	SheetProperties = "물건목록"
	SheetExpenses   = "필요경비상세"
)

// Result is the outcome of parsing one workbook: partial inventory
// records ready for the engine's merge pass, plus skip counters for
// the import summary.
type Result struct {
	Items             []model.InventoryItem `json:"items"`
	SkippedProperties int                   `json:"skippedProperties"`
	SkippedExpenses   int                   `json:"skippedExpenses"`
	UnmatchedExpenses int                   `json:"unmatchedExpenses"`
}

// column aliases, first row of each sheet
var (
	companyAliases       = []string{"거래처명*", "거래처명", "회사명"}
	propertyAliases      = []string{"물건명*", "물건명"}
	addressAliases       = []string{"소재지", "주소", "address"}
	acquisitionAliases   = []string{"취득일(YYYYMMDD)", "취득일"}
	transferDateAliases  = []string{"양도일(YYYYMMDD)", "양도일"}
	transferValueAliases = []string{"양도가액"}
	prepaidIncomeAliases = []string{"기납부 종소세"}
	prepaidLocalAliases  = []string{"기납부 지방소득세"}
	over85Aliases        = []string{"85초과(O/X)", "85초과"}
	remarksAliases       = []string{"비고"}
	seqAliases           = []string{"번호"}
	expenseNameAliases   = []string{"비용명"}
	categoryAliases      = []string{"구분(취득가액/기타필요경비)", "구분"}
	amountAliases        = []string{"금액"}
	approvedAliases      = []string{"비용인정(O/X)", "비용인정"}
)

// header maps alias groups to column indexes for one sheet.
type header map[string]int

func buildHeader(row []string) header {
	h := header{}
	for i, cell := range row {
		h[strings.TrimSpace(cell)] = i
	}
	return h
}

func (h header) get(row []string, aliases []string) string {
	for _, a := range aliases {
		if i, ok := h[a]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

// Parse reads a workbook and returns the partial records belonging to
// companyName. Rows naming a different company are skipped, as are
// property rows without a property name and expense rows that match no
// property in the same workbook.
func Parse(r io.Reader, companyName string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	propRows, err := f.GetRows(SheetProperties)
	if err != nil {
		return nil, fmt.Errorf("sheet %s not found: %w", SheetProperties, err)
	}
	if len(propRows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", SheetProperties)
	}

	res := &Result{}
	companyName = strings.TrimSpace(companyName)

	h := buildHeader(propRows[0])
	for _, row := range propRows[1:] {
		company := h.get(row, companyAliases)
		if companyName != "" && company != "" && company != companyName {
			res.SkippedProperties++
			continue
		}
		name := h.get(row, propertyAliases)
		if name == "" {
			res.SkippedProperties++
			continue
		}

		item := model.InventoryItem{
			PropertyName:     name,
			Address:          h.get(row, addressAliases),
			TransferValue:    numfmt.ParseThousands(h.get(row, transferValueAliases)),
			PrepaidIncomeTax: numfmt.ParseThousands(h.get(row, prepaidIncomeAliases)),
			PrepaidLocalTax:  numfmt.ParseThousands(h.get(row, prepaidLocalAliases)),
			Over85:           model.ApprovalFromMark(h.get(row, over85Aliases)).Approved(),
			Remarks:          h.get(row, remarksAliases),
			ProgressStage:    model.StageUnconfirmed,
		}
		// Malformed dates leave the field unset rather than failing the row.
		if d, err := dateutil.ParseFixed(h.get(row, acquisitionAliases)); err == nil {
			item.AcquisitionDate = d
		}
		if d, err := dateutil.ParseFixed(h.get(row, transferDateAliases)); err == nil {
			item.TransferDate = d
		}

		res.Items = append(res.Items, item)
	}

	expRows, err := f.GetRows(SheetExpenses)
	if err != nil {
		// The expense sheet is optional; a property-only workbook imports fine.
		return res, nil
	}
	if len(expRows) < 2 {
		return res, nil
	}

	eh := buildHeader(expRows[0])
	for _, row := range expRows[1:] {
		company := eh.get(row, companyAliases)
		if companyName != "" && company != "" && company != companyName {
			res.SkippedExpenses++
			continue
		}
		propName := eh.get(row, propertyAliases)
		expName := eh.get(row, expenseNameAliases)
		if propName == "" || expName == "" {
			res.SkippedExpenses++
			continue
		}

		item := findItem(res.Items, propName)
		if item == nil {
			res.UnmatchedExpenses++
			continue
		}

		category := model.ExpenseCategory(eh.get(row, categoryAliases))
		if !category.Valid() {
			category = model.CategoryAcquisition
		}
		approved := model.Approved
		if mark := eh.get(row, approvedAliases); mark != "" {
			approved = model.ApprovalFromMark(mark)
		}

		seq := int(numfmt.ParseThousands(eh.get(row, seqAliases)))
		if seq <= 0 {
			seq = len(item.Expenses) + 1
		}
		item.Expenses = append(item.Expenses, model.ExpenseRow{
			SeqNo:               seq,
			Name:                expName,
			Category:            category,
			Amount:              numfmt.ParseThousands(eh.get(row, amountAliases)),
			ProvisionalApproved: approved,
			FinalApproved:       model.Approved,
			Note:                eh.get(row, remarksAliases),
		})
	}

	return res, nil
}

func findItem(items []model.InventoryItem, propertyName string) *model.InventoryItem {
	for i := range items {
		if items[i].PropertyName == propertyName {
			return &items[i]
		}
	}
	return nil
}
