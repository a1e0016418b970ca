package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/model"
)

func docOf(lines ...string) *DocumentText {
	d := &DocumentText{Lines: lines}
	for _, l := range lines {
		d.Text += l + "\n"
	}
	return d
}

func TestDetectKindByFileName(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"매각대금_완납증명원.pdf", KindPaymentCertificate},
		{"완납증명.pdf", KindPaymentCertificate},
		{"등기비용내역서.pdf", KindRegistrationCosts},
		{"부동산의_표시.pdf", KindPropertyDescription},
		{"등기부등본.pdf", KindPropertyDescription},
		{"매매계약서.pdf", KindSaleContract},
		{"중개수수료_영수증.pdf", KindBrokerageReceipt},
		{"법무사_청구서.pdf", KindLegalFees},
		{"신탁말소.pdf", KindTrustFees},
		{"관리비정산서.pdf", KindManagementFees},
		{"IMG_2041.jpg", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectKind(tt.name, nil), tt.name)
	}
}

func TestDetectKindSpecificBeatsGeneric(t *testing.T) {
	// 등기비용내역서 contains 등기 but must not classify as 부동산의 표시.
	assert.Equal(t, KindRegistrationCosts, DetectKind("등기비용 내역.pdf", nil))
}

func TestDetectKindFallsBackToBodyText(t *testing.T) {
	doc := docOf("매각대금 완납증명원", "아래 금액을 완납하였음을 증명합니다")
	assert.Equal(t, KindPaymentCertificate, DetectKind("scan_0001.pdf", doc))
}

func TestClassifyPaymentCertificate(t *testing.T) {
	doc := docOf(
		"매각대금 완납증명원",
		"매각대금: 256,900,000원",
		"완납일: 2025.12.16",
	)
	item := Classify(KindPaymentCertificate, doc)

	assert.Equal(t, int64(256_900_000), item.AcquisitionValue)
	assert.Equal(t, dateutil.Date{Year: 2025, Month: time.December, Day: 16}, item.AcquisitionDate)
	require.Len(t, item.Expenses, 1)
	assert.Equal(t, "취득가액", item.Expenses[0].Name)
	assert.Equal(t, model.CategoryAcquisition, item.Expenses[0].Category)
	assert.Equal(t, int64(256_900_000), item.Expenses[0].Amount)
}

func TestClassifySaleContract(t *testing.T) {
	doc := docOf(
		"부동산(주거용) 매매 전자계약서",
		"매매대금 294,000,000원",
		"잔금일 2026년 1월 28일",
		"전용면적 84.8954㎡",
	)
	item := Classify(KindSaleContract, doc)

	assert.Equal(t, int64(294_000_000), item.TransferValue)
	assert.Equal(t, dateutil.Date{Year: 2026, Month: time.January, Day: 28}, item.TransferDate)
	assert.InDelta(t, 84.8954, item.Area, 0.0001)
	assert.False(t, item.Over85)
}

func TestClassifyPropertyDescriptionArea(t *testing.T) {
	item := Classify(KindPropertyDescription, docOf("전용면적 112.33㎡"))
	assert.InDelta(t, 112.33, item.Area, 0.001)
	assert.True(t, item.Over85)
	assert.Empty(t, item.Address, "소재지는 직접 입력")
}

func TestClassifyRegistrationCosts(t *testing.T) {
	doc := docOf("등기비용내역서", "총계 4,439,530원")
	item := Classify(KindRegistrationCosts, doc)

	assert.Equal(t, int64(4_439_530), item.OtherExpenses)
	require.Len(t, item.Expenses, 1)
	assert.Equal(t, "취득세", item.Expenses[0].Name)
}

func TestClassifyReceiptWithoutAmount(t *testing.T) {
	// No readable amount: the row is still emitted at 0 for the
	// operator to fill in.
	item := Classify(KindBrokerageReceipt, nil)
	require.Len(t, item.Expenses, 1)
	assert.Equal(t, "중개수수료", item.Expenses[0].Name)
	assert.Zero(t, item.Expenses[0].Amount)
	assert.Equal(t, model.CategoryOtherExpense, item.Expenses[0].Category)
}

func TestClassifyUnknownIsEmpty(t *testing.T) {
	item := Classify(KindUnknown, docOf("합계 999,999원"))
	assert.Zero(t, item.AcquisitionValue)
	assert.Empty(t, item.Expenses)
}
