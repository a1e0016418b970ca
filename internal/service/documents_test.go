package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/atomtax/backoffice/internal/model"
	"github.com/atomtax/backoffice/internal/spreadsheet"
)

// multipartUpload posts one or more files under fieldName.
func (ts *testServer) multipartUpload(path, fieldName string, files map[string][]byte) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile(fieldName, name)
		require.NoError(ts.t, err)
		_, err = part.Write(data)
		require.NoError(ts.t, err)
	}
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func importWorkbook(t *testing.T, propRows, expRows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", spreadsheet.SheetProperties))
	for i, row := range propRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(spreadsheet.SheetProperties, cell, &row))
	}
	if expRows != nil {
		_, err := f.NewSheet(spreadsheet.SheetExpenses)
		require.NoError(t, err)
		for i, row := range expRows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(spreadsheet.SheetExpenses, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportInventoryWorkbook(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})

	data := importWorkbook(t,
		[][]interface{}{
			{"거래처명*", "물건명*", "소재지", "취득일(YYYYMMDD)", "양도일(YYYYMMDD)", "양도가액"},
			{"아톰상사", "역삼동 101호", "서울 강남구", "20230401", "20250115", "300,000,000"},
			{"다른회사", "남의물건", "", "", "", "1,000"},
		},
		[][]interface{}{
			{"거래처명*", "물건명*", "비용명", "구분(취득가액/기타필요경비)", "금액", "비용인정(O/X)"},
			{"아톰상사", "역삼동 101호", "취득가액", "취득가액", "256,900,000", "O"},
			{"아톰상사", "역삼동 101호", "등기비", "기타필요경비", "4,439,530", "O"},
			{"아톰상사", "없는물건", "미아비용", "기타필요경비", "1,000", "O"},
		})

	rec := ts.multipartUpload("/api/clients/"+c.ID+"/inventory/import", "file", map[string][]byte{"import.xlsx": data})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp importResponse
	ts.decode(rec, &resp)
	assert.Equal(t, 1, resp.Added)
	assert.Equal(t, 0, resp.Merged)
	assert.Equal(t, 1, resp.Skipped, "foreign-company row skipped")
	assert.Equal(t, 1, resp.UnmatchedExpenses)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	assert.Equal(t, "역삼동 101호", item.PropertyName)
	assert.Equal(t, c.ID, item.ClientID)
	assert.Equal(t, int64(300_000_000), item.TransferValue)
	assert.Equal(t, int64(256_900_000), item.AcquisitionValue)
	assert.Equal(t, int64(4_439_530), item.OtherExpenses)
	assert.Equal(t, int64(300_000_000-256_900_000-4_439_530), item.TransferIncome)
	assert.Equal(t, "2025-03-31", item.ReportDeadline.String())
	assert.Len(t, item.Expenses, 2)
}

func TestImportInventoryMergesByPropertyName(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})
	existing := ts.addItem(c.ID) // 물건1

	data := importWorkbook(t, [][]interface{}{
		{"거래처명*", "물건명*", "양도가액"},
		{"아톰상사", "물건1", "150,000,000"},
	}, nil)

	rec := ts.multipartUpload("/api/clients/"+c.ID+"/inventory/import", "file", map[string][]byte{"import.xlsx": data})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp importResponse
	ts.decode(rec, &resp)
	assert.Equal(t, 1, resp.Merged)
	assert.Equal(t, 0, resp.Added)

	got := ts.getItem(existing.ID)
	assert.Equal(t, int64(150_000_000), got.TransferValue)
}

func TestImportInventoryMissingFile(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})

	rec := ts.multipartUpload("/api/clients/"+c.ID+"/inventory/import", "wrong", map[string][]byte{"x.xlsx": {1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateDownload(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/inventory/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), spreadsheet.SheetProperties)
	assert.Contains(t, f.GetSheetList(), spreadsheet.SheetExpenses)
}

func TestUploadDocumentsMergesExtraction(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})
	item := ts.addItem(c.ID)

	// Scans classify by file name alone; unreadable text leaves the
	// amounts at zero for the operator to fill in.
	rec := ts.multipartUpload("/api/inventory/"+item.ID+"/documents", "files", map[string][]byte{
		"신탁말소 영수증.jpg": []byte("jpeg"),
		"중개수수료.jpg":    []byte("jpeg"),
		"현장사진.jpg":     []byte("jpeg"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp documentsResponse
	ts.decode(rec, &resp)
	assert.Equal(t, 2, resp.Recognized)
	assert.Equal(t, []string{"현장사진.jpg"}, resp.Unrecognized)
	assert.Empty(t, resp.Unreadable)

	got := ts.getItem(item.ID)
	names := make([]string, 0, len(got.Expenses))
	for _, row := range got.Expenses {
		names = append(names, row.Name)
	}
	assert.ElementsMatch(t, []string{"신탁말소비용", "중개수수료"}, names)
	for _, row := range got.Expenses {
		assert.Equal(t, model.Approved, row.ProvisionalApproved)
	}
}

func TestUploadDocumentsDuplicateSuppression(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})
	item := ts.addItem(c.ID)

	upload := func() documentsResponse {
		rec := ts.multipartUpload("/api/inventory/"+item.ID+"/documents", "files", map[string][]byte{
			"신탁말소 영수증.jpg": []byte("jpeg"),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp documentsResponse
		ts.decode(rec, &resp)
		return resp
	}

	first := upload()
	assert.Equal(t, 0, first.DuplicateExpenses)

	second := upload()
	assert.Equal(t, 1, second.DuplicateExpenses, "re-uploading the same receipt must not double the row")
	assert.Len(t, ts.getItem(item.ID).Expenses, 1)
}

// fakeArchive records saved objects in memory.
type fakeArchive struct {
	objects map[string][]byte
	err     error
}

func (f *fakeArchive) Save(_ context.Context, objectName string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[objectName] = append([]byte(nil), data...)
	return nil
}

func TestUploadDocumentsArchivesOriginals(t *testing.T) {
	ts := newTestServer(t)
	fa := &fakeArchive{}
	ts.svc.SetDocumentArchive(fa)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})
	item := ts.addItem(c.ID)

	rec := ts.multipartUpload("/api/inventory/"+item.ID+"/documents", "files", map[string][]byte{
		"신탁말소 영수증.jpg": []byte("jpeg-bytes"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp documentsResponse
	ts.decode(rec, &resp)
	assert.Equal(t, 1, resp.Archived)
	assert.Equal(t, []byte("jpeg-bytes"), fa.objects["inventory/"+item.ID+"/신탁말소 영수증.jpg"])
}

func TestUploadDocumentsArchiveFailureNonFatal(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.SetDocumentArchive(&fakeArchive{err: errors.New("bucket unavailable")})
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})
	item := ts.addItem(c.ID)

	rec := ts.multipartUpload("/api/inventory/"+item.ID+"/documents", "files", map[string][]byte{
		"신탁말소 영수증.jpg": []byte("jpeg"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp documentsResponse
	ts.decode(rec, &resp)
	assert.Equal(t, 0, resp.Archived)
	assert.Equal(t, 1, resp.Recognized, "extraction proceeds when the archive is down")
	require.Len(t, ts.getItem(item.ID).Expenses, 1)
}

func TestUploadDocumentsEmptyBatch(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createClient(model.Client{CompanyName: "아톰상사", Number: "1"})
	item := ts.addItem(c.ID)

	rec := ts.multipartUpload("/api/inventory/"+item.ID+"/documents", "other", map[string][]byte{"x.jpg": {1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
