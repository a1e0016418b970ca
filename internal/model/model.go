// Package model defines the domain records shared by the engine, store
// and HTTP layers. Enum-like values are serialized as the fixed Korean
// labels the firm's spreadsheets and screens use; they are wire values,
// not display strings.
package model

import (
	"strings"
	"time"

	"github.com/atomtax/backoffice/internal/dateutil"
)

// ProgressStage is the user-set workflow label on an inventory item.
// Transitions are free-form; no ordering is enforced.
type ProgressStage string

const (
	StageUnconfirmed      ProgressStage = "미확인"
	StageConfirmed        ProgressStage = "확인"
	StageFiledToSystem    ProgressStage = "위하고입력"
	StageCustomerNotified ProgressStage = "고객안내"
	StageFiled            ProgressStage = "신고완료"
)

// Valid reports whether s is one of the five known stages.
func (s ProgressStage) Valid() bool {
	switch s {
	case StageUnconfirmed, StageConfirmed, StageFiledToSystem, StageCustomerNotified, StageFiled:
		return true
	}
	return false
}

// ExpenseCategory buckets a ledger row into one of the two totals.
type ExpenseCategory string

const (
	CategoryAcquisition  ExpenseCategory = "취득가액"
	CategoryOtherExpense ExpenseCategory = "기타필요경비"
)

// Valid reports whether c is one of the two bucketed categories. Rows
// with any other value are dropped from aggregation.
func (c ExpenseCategory) Valid() bool {
	return c == CategoryAcquisition || c == CategoryOtherExpense
}

// Approval is the O/X flag used on expense rows.
type Approval string

const (
	Approved Approval = "O"
	Rejected Approval = "X"
)

// Approved reports whether the flag is set to O.
func (a Approval) Approved() bool { return a == Approved }

// ApprovalFromMark normalizes spreadsheet marks: O and Y count as
// approved, anything else as rejected.
func ApprovalFromMark(s string) Approval {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "O", "Y":
		return Approved
	}
	return Rejected
}

// Client is one business client (고객사) of the firm.
type Client struct {
	ID     string `json:"id"`
	Number string `json:"number"`

	CompanyName    string `json:"companyName"`
	Manager        string `json:"manager"`
	CEOName        string `json:"ceoName"`
	BusinessNumber string `json:"businessNumber"`
	Contact        string `json:"contact"`
	Email          string `json:"email"`
	PostalCode     string `json:"postalCode"`
	Address        string `json:"address"`

	ResidentNumber  string `json:"residentNumber"`
	CorporateNumber string `json:"corporateNumber"`
	BusinessType    string `json:"businessType"`
	BusinessItem    string `json:"businessItem"`
	BusinessCode    string `json:"businessCode"`

	SupplyAmount         int64  `json:"supplyAmount"`
	TaxAmount            int64  `json:"taxAmount"`
	FirstWithdrawalMonth string `json:"firstWithdrawalMonth"`

	HometaxID       string `json:"hometaxId"`
	HometaxPassword string `json:"hometaxPassword"`

	GoogleDriveFolder     string `json:"googleDriveFolder"`
	RealEstateDriveFolder string `json:"realEstateDriveFolder"`

	// IsTerminated soft-partitions the client out of the active list.
	// Terminated clients keep their number but do not block reuse.
	IsTerminated bool `json:"isTerminated"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InventoryItem is one disposed or disposing property owned by exactly
// one client. TransferIncome, ReportDeadline, AcquisitionValue and
// OtherExpenses are derived fields: the first two by the inventory
// engine, the last two by the expense ledger.
type InventoryItem struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`

	PropertyName string  `json:"propertyName"`
	Address      string  `json:"address"`
	Area         float64 `json:"area"`

	AcquisitionValue int64 `json:"acquisitionValue"`
	OtherExpenses    int64 `json:"otherExpenses"`
	TransferValue    int64 `json:"transferValue"`
	TransferIncome   int64 `json:"transferIncome"`

	AcquisitionDate dateutil.Date `json:"acquisitionDate"`
	TransferDate    dateutil.Date `json:"transferDate"`
	ReportDeadline  dateutil.Date `json:"reportDeadline"`

	PrepaidIncomeTax int64 `json:"prepaidIncomeTax"`
	PrepaidLocalTax  int64 `json:"prepaidLocalTax"`

	Over85         bool          `json:"over85"`
	ComparativeTax bool          `json:"comparativeTax"`
	ProgressStage  ProgressStage `json:"progressStage"`
	Remarks        string        `json:"remarks"`

	Expenses []ExpenseRow `json:"expenses"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy; the expense slice is the only reference field.
func (it InventoryItem) Clone() InventoryItem {
	out := it
	out.Expenses = append([]ExpenseRow(nil), it.Expenses...)
	return out
}

// ExpenseRow is one slot of a property's necessary-expense ledger.
type ExpenseRow struct {
	SeqNo    int             `json:"seqNo"`
	Name     string          `json:"name"`
	Category ExpenseCategory `json:"category"`
	Amount   int64           `json:"amount"`

	// ProvisionalApproved gates inclusion in the 예정신고 totals.
	// FinalApproved is carried for the 종소세 filing but does not
	// affect aggregation.
	ProvisionalApproved Approval `json:"provisionalApproved"`
	FinalApproved       Approval `json:"finalApproved"`

	Note string `json:"note"`
}

// Blank reports whether the row is an unused slot. Blank rows are
// excluded from aggregation and dropped on save.
func (r ExpenseRow) Blank() bool {
	return strings.TrimSpace(r.Name) == ""
}
