package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atomtax/backoffice/internal/model"
)

func testExtractor() *Extractor {
	e := New(zap.NewNop().Sugar())
	e.retry = fastRetryConfig(1)
	return e
}

func TestExtractAllEmptyBatch(t *testing.T) {
	_, err := testExtractor().ExtractAll(context.Background(), nil)
	var ingErr *IngestError
	require.True(t, errors.As(err, &ingErr))
	assert.Equal(t, ErrNoDocuments, ingErr.Code)
}

func TestExtractAllClassifiesByNameForScans(t *testing.T) {
	// JPEG scans carry no text; classification rides on the file name.
	docs := []Document{
		Bytes("중개수수료_영수증.jpg", []byte{0xff, 0xd8, 0xff}),
		Bytes("IMG_2041.jpg", []byte{0xff, 0xd8, 0xff}),
	}
	res, err := testExtractor().ExtractAll(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Recognized)
	assert.Equal(t, []string{"IMG_2041.jpg"}, res.Unrecognized)
	require.Len(t, res.Item.Expenses, 1)
	assert.Equal(t, "중개수수료", res.Item.Expenses[0].Name)
}

func TestExtractAllMergesAcrossDocuments(t *testing.T) {
	docs := []Document{
		Bytes("매각대금_완납증명원_1.jpg", nil),
		Bytes("매각대금_완납증명원_2.jpg", nil),
		Bytes("등기비용내역서.jpg", nil),
		Bytes("신탁말소_영수증.jpg", nil),
	}
	res, err := testExtractor().ExtractAll(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Recognized)

	// Both certificate uploads emit no amount (scans); the expense
	// candidate lists still deduplicate by (name, amount).
	names := make(map[string]int)
	for _, row := range res.Item.Expenses {
		names[row.Name]++
	}
	for name, n := range names {
		assert.Equal(t, 1, n, "expense %q duplicated", name)
	}
}

func TestExtractAllAcquisitionTakesMax(t *testing.T) {
	e := testExtractor()
	var item model.InventoryItem
	e.mergePart(&item, model.InventoryItem{AcquisitionValue: 260_000_000, OtherExpenses: 4_000_000})
	e.mergePart(&item, model.InventoryItem{AcquisitionValue: 256_900_000, OtherExpenses: 3_000_000})
	assert.Equal(t, int64(260_000_000), item.AcquisitionValue, "re-upload keeps the maximum, never doubles")
	assert.Equal(t, int64(7_000_000), item.OtherExpenses, "other expenses accumulate")
}

func TestExtractAllFetchFailureSkipsDocument(t *testing.T) {
	boom := Document{Name: "계약서.pdf", Open: func(context.Context) ([]byte, error) {
		return nil, errors.New("drive unavailable")
	}}
	res, err := testExtractor().ExtractAll(context.Background(), []Document{boom})
	require.NoError(t, err, "a failed document never fails the batch")
	assert.Equal(t, []string{"계약서.pdf"}, res.Unreadable)
	assert.Zero(t, res.Recognized)
}
