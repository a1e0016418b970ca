package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atomtax/backoffice/internal/dateutil"
	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/numfmt"
)

// Kind is the recognized document type. Detection is deterministic:
// keyword matching over the file name, with the document body text as
// a fallback.
type Kind string

const (
	KindUnknown             Kind = ""
	KindPaymentCertificate  Kind = "매각대금완납증명원"
	KindPropertyDescription Kind = "부동산의표시"
	KindSaleContract        Kind = "매매계약서"
	KindRegistrationCosts   Kind = "등기비용내역서"
	KindBrokerageReceipt    Kind = "중개수수료영수증"
	KindLegalFees           Kind = "법무사비용"
	KindTrustFees           Kind = "신탁비용"
	KindManagementFees      Kind = "관리비정산"
)

// kindRules is ordered: the first matching rule wins, so the more
// specific keywords sit above the generic ones (등기비용 before 등기).
var kindRules = []struct {
	kind     Kind
	keywords []string
}{
	{KindPaymentCertificate, []string{"완납", "매각대금"}},
	{KindRegistrationCosts, []string{"등기비용", "내역"}},
	{KindPropertyDescription, []string{"표시", "등기"}},
	{KindSaleContract, []string{"계약", "매매"}},
	{KindBrokerageReceipt, []string{"중개", "수수료"}},
	{KindLegalFees, []string{"법무사", "법무비용"}},
	{KindTrustFees, []string{"신탁"}},
	{KindManagementFees, []string{"관리비"}},
}

// DetectKind classifies a document by its file name; when the name is
// inconclusive, the first lines of body text are tried instead.
func DetectKind(fileName string, doc *DocumentText) Kind {
	if k := matchKind(fileName); k != KindUnknown {
		return k
	}
	if doc != nil {
		// Document titles live in the first few lines.
		for i, line := range doc.Lines {
			if i >= 5 {
				break
			}
			if k := matchKind(line); k != KindUnknown {
				return k
			}
		}
	}
	return KindUnknown
}

func matchKind(s string) Kind {
	s = strings.ToLower(s)
	for _, rule := range kindRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.kind
			}
		}
	}
	return KindUnknown
}

var (
	// 256,900,000원 or bare grouped digits after a label
	amountRe = regexp.MustCompile(`([\d,]{4,})\s*원?`)
	// 2025.12.16 / 2025-12-16 / 2025년 12월 16일
	dateRe = regexp.MustCompile(`(\d{4})[.\-년/\s]+(\d{1,2})[.\-월/\s]+(\d{1,2})`)
	// 전용면적 84.8954㎡
	areaRe = regexp.MustCompile(`(\d{1,4}(?:\.\d+)?)\s*(?:㎡|m2|m²)`)
)

// amountAfter finds the first grouped amount following any of the
// labels in the document text.
func amountAfter(doc *DocumentText, labels ...string) int64 {
	if doc == nil {
		return 0
	}
	for _, line := range doc.Lines {
		for _, label := range labels {
			idx := strings.Index(line, label)
			if idx < 0 {
				continue
			}
			if m := amountRe.FindString(line[idx+len(label):]); m != "" {
				return numfmt.ParseThousands(m)
			}
		}
	}
	return 0
}

func dateAfter(doc *DocumentText, labels ...string) dateutil.Date {
	if doc == nil {
		return dateutil.Date{}
	}
	for _, line := range doc.Lines {
		for _, label := range labels {
			idx := strings.Index(line, label)
			if idx < 0 {
				continue
			}
			m := dateRe.FindStringSubmatch(line[idx+len(label):])
			if m == nil {
				continue
			}
			raw := m[1] + pad2(m[2]) + pad2(m[3])
			if d, err := dateutil.ParseFixed(raw); err == nil {
				return d
			}
		}
	}
	return dateutil.Date{}
}

func areaIn(doc *DocumentText) float64 {
	if doc == nil {
		return 0
	}
	if m := areaRe.FindStringSubmatch(doc.Text); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return f
		}
	}
	return 0
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Classify turns one recognized document into a partial inventory
// record. Fields the document cannot establish stay zero; expense rows
// without a readable amount are emitted at 0 for the operator to fill
// in, with the source document named in the note.
func Classify(kind Kind, doc *DocumentText) model.InventoryItem {
	var item model.InventoryItem

	switch kind {
	case KindPaymentCertificate:
		// 매각대금 → 취득가액, 완납일 → 취득일
		item.AcquisitionValue = amountAfter(doc, "매각대금", "완납금액", "합계")
		item.AcquisitionDate = dateAfter(doc, "완납일", "납부일")
		if item.AcquisitionValue > 0 {
			item.Expenses = append(item.Expenses, model.ExpenseRow{
				Name:     "취득가액",
				Category: model.CategoryAcquisition,
				Amount:   item.AcquisitionValue,
				Note:     "매각대금 완납증명원",
			})
		}

	case KindPropertyDescription:
		// 소재지와 물건명은 직접 입력; 면적만 읽는다.
		item.Area = areaIn(doc)

	case KindSaleContract:
		// 매매대금 → 양도가액, 잔금일 → 양도일
		item.TransferValue = amountAfter(doc, "매매대금", "총 매매대금")
		item.TransferDate = dateAfter(doc, "잔금일", "잔금지급일")
		item.Area = areaIn(doc)

	case KindRegistrationCosts:
		total := amountAfter(doc, "총계", "합계")
		item.OtherExpenses = total
		if total > 0 {
			item.Expenses = append(item.Expenses, model.ExpenseRow{
				Name:     "취득세",
				Category: model.CategoryAcquisition,
				Amount:   total,
				Note:     "등기비용내역서",
			})
		}

	case KindBrokerageReceipt:
		item.Expenses = append(item.Expenses, model.ExpenseRow{
			Name:     "중개수수료",
			Category: model.CategoryOtherExpense,
			Amount:   amountAfter(doc, "중개보수", "수수료"),
			Note:     "중개수수료 영수증",
		})

	case KindLegalFees:
		item.Expenses = append(item.Expenses, model.ExpenseRow{
			Name:     "취득세 등",
			Category: model.CategoryAcquisition,
			Amount:   amountAfter(doc, "합계", "청구금액"),
			Note:     "법무사 영수증",
		})

	case KindTrustFees:
		item.Expenses = append(item.Expenses, model.ExpenseRow{
			Name:     "신탁말소비용",
			Category: model.CategoryOtherExpense,
			Amount:   amountAfter(doc, "합계"),
			Note:     "신탁말소비용 영수증",
		})

	case KindManagementFees:
		item.Expenses = append(item.Expenses, model.ExpenseRow{
			Name:     "관리비 정산",
			Category: model.CategoryOtherExpense,
			Amount:   amountAfter(doc, "정산금액", "합계"),
			Note:     "관리비 정산서",
		})
	}

	if item.Area > 0 {
		item.Over85 = item.Area > 85
	}
	return item
}
