// Package extraction ingests the paper trail behind a property trade
// (완납증명원, 매매계약서, 등기비용내역서, receipts) and distills it into a
// partial inventory record the engine can merge into the row the
// operator has open.
//
// Extraction is deterministic: document kind from keywords, fields from
// labeled amounts and dates in the text. Unrecognized or unreadable
// documents are skipped with a warning, never fatal to the batch.
package extraction

import (
	"context"

	"go.uber.org/zap"

	"github.com/atomtax/backoffice/internal/model"
)

// Document is one uploaded or drive-hosted file. Open is retried with
// backoff, so it may point at remote storage.
type Document struct {
	Name string
	Open func(ctx context.Context) ([]byte, error)
}

// Bytes wraps an already-loaded file as a Document.
func Bytes(name string, data []byte) Document {
	return Document{Name: name, Open: func(context.Context) ([]byte, error) { return data, nil }}
}

// Result is the distilled batch: one partial record plus per-document
// outcomes for the upload summary.
type Result struct {
	Item         model.InventoryItem `json:"item"`
	Recognized   int                 `json:"recognized"`
	Unrecognized []string            `json:"unrecognized,omitempty"`
	Unreadable   []string            `json:"unreadable,omitempty"`
}

type Extractor struct {
	log   *zap.SugaredLogger
	retry RetryConfig
}

func New(log *zap.SugaredLogger) *Extractor {
	return &Extractor{log: log, retry: DefaultFetchRetryConfig}
}

// ExtractAll processes a batch of documents into one partial record.
// Across documents: the acquisition value takes the maximum seen (a
// re-uploaded certificate must not double it), other expenses
// accumulate, the remaining scalars are last-non-empty, and candidate
// expense rows are deduplicated by (name, amount).
func (e *Extractor) ExtractAll(ctx context.Context, docs []Document) (*Result, error) {
	if len(docs) == 0 {
		return nil, &IngestError{Code: ErrNoDocuments, Message: "no documents in batch"}
	}

	res := &Result{}
	for _, doc := range docs {
		data, err := WithRetry(ctx, e.retry, func(ctx context.Context) ([]byte, error) {
			b, err := doc.Open(ctx)
			if err != nil {
				return nil, &IngestError{Code: ErrFetchFailed, Message: "fetch document", Document: doc.Name, Retryable: true, Cause: err}
			}
			return b, nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			e.log.Warnw("document fetch failed", "document", doc.Name, "error", err)
			res.Unreadable = append(res.Unreadable, doc.Name)
			continue
		}

		text, err := ReadPDF(doc.Name, data)
		if err != nil {
			// Name-only classification still works for scans and photos.
			e.log.Debugw("document text unavailable", "document", doc.Name, "error", err)
		}

		kind := DetectKind(doc.Name, text)
		if kind == KindUnknown {
			e.log.Infow("unrecognized document skipped", "document", doc.Name)
			res.Unrecognized = append(res.Unrecognized, doc.Name)
			continue
		}

		part := Classify(kind, text)
		e.mergePart(&res.Item, part)
		res.Recognized++
		e.log.Infow("document extracted",
			"document", doc.Name,
			"kind", string(kind),
			"expenseRows", len(part.Expenses))
	}

	if res.Item.Area > 0 {
		res.Item.Over85 = res.Item.Area > 85
	}
	return res, nil
}

func (e *Extractor) mergePart(dst *model.InventoryItem, part model.InventoryItem) {
	if part.PropertyName != "" {
		dst.PropertyName = part.PropertyName
	}
	if part.Address != "" {
		dst.Address = part.Address
	}
	if part.AcquisitionValue > dst.AcquisitionValue {
		dst.AcquisitionValue = part.AcquisitionValue
	}
	dst.OtherExpenses += part.OtherExpenses
	if part.TransferValue != 0 {
		dst.TransferValue = part.TransferValue
	}
	if !part.AcquisitionDate.IsZero() {
		dst.AcquisitionDate = part.AcquisitionDate
	}
	if !part.TransferDate.IsZero() {
		dst.TransferDate = part.TransferDate
	}
	if part.Area > 0 {
		dst.Area = part.Area
	}

	for _, row := range part.Expenses {
		dup := false
		for _, have := range dst.Expenses {
			if have.Name == row.Name && have.Amount == row.Amount {
				dup = true
				break
			}
		}
		if dup {
			e.log.Debugw("duplicate expense candidate dropped", "name", row.Name, "amount", row.Amount)
			continue
		}
		row.SeqNo = len(dst.Expenses) + 1
		if row.ProvisionalApproved == "" {
			row.ProvisionalApproved = model.Approved
		}
		if row.FinalApproved == "" {
			row.FinalApproved = model.Approved
		}
		dst.Expenses = append(dst.Expenses, row)
	}
}
