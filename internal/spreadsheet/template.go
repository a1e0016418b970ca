package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var propertyHeader = []interface{}{
	"거래처명*", "물건명", "소재지", "취득일(YYYYMMDD)", "양도일(YYYYMMDD)",
	"양도가액", "기납부 종소세", "기납부 지방소득세", "신고기한", "85초과(O/X)", "비고",
}

var expenseHeader = []interface{}{
	"거래처명*", "물건명*", "번호", "비용명", "구분(취득가액/기타필요경비)",
	"금액", "비용인정(O/X)", "비고",
}

var propertyExample = []interface{}{
	"예: (주)아톰세무회계", "예: 서울시 강남구 아파트", "서울시 강남구 테헤란로 123",
	"20230115", "20250405", "1500000000", "0", "0", "", "O", "",
}

var expenseExample = []interface{}{
	"예: (주)아톰세무회계", "예: 서울시 강남구 아파트", "1", "취득가액",
	"취득가액", "1200000000", "O", "",
}

// WriteTemplate writes the blank two-sheet entry workbook, one example
// row per sheet, to w.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), SheetProperties)
	if _, err := f.NewSheet(SheetExpenses); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetExpenses, err)
	}

	if err := f.SetSheetRow(SheetProperties, "A1", &propertyHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetProperties, "A2", &propertyExample); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetExpenses, "A1", &expenseHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetExpenses, "A2", &expenseExample); err != nil {
		return err
	}

	// Wide enough for the Korean headers.
	if err := f.SetColWidth(SheetProperties, "A", "K", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetExpenses, "A", "H", 18); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
