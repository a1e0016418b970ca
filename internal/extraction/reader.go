package extraction

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes     = 100 * 1024 // 100KB cap for extracted text
	scannedThreshold = 50         // chars per page below which the PDF is considered scanned
)

// DocumentText is the readable content of one uploaded document.
// Scanned documents carry no text; classification then falls back to
// the file name alone.
type DocumentText struct {
	PageCount int
	Text      string
	Lines     []string
	IsScanned bool
}

// ReadPDF extracts plain text from a PDF. It is wrapped in recover()
// and never panics; unreadable or non-PDF input returns a structured
// error and the caller proceeds with name-only classification.
func ReadPDF(name string, data []byte) (result *DocumentText, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &IngestError{
				Code:     ErrDocumentUnreadable,
				Message:  fmt.Sprintf("panic while reading document: %v", r),
				Document: name,
			}
		}
	}()

	if len(data) == 0 {
		return nil, &IngestError{Code: ErrDocumentEmpty, Message: "document is empty", Document: name}
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, &IngestError{Code: ErrDocumentUnreadable, Message: "not a PDF document", Document: name}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &IngestError{Code: ErrDocumentUnreadable, Message: "open PDF reader", Document: name, Cause: err}
	}

	pages := reader.NumPage()
	if pages < 1 {
		pages = 1
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return nil, &IngestError{Code: ErrDocumentUnreadable, Message: "extract plain text", Document: name, Cause: err}
	}
	textBytes, err := io.ReadAll(io.LimitReader(plainText, int64(maxTextBytes)))
	if err != nil {
		return nil, &IngestError{Code: ErrDocumentUnreadable, Message: "read plain text", Document: name, Cause: err}
	}

	doc := &DocumentText{
		PageCount: pages,
		Text:      string(textBytes),
		IsScanned: len(textBytes)/pages < scannedThreshold,
	}
	for _, line := range strings.Split(doc.Text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			doc.Lines = append(doc.Lines, trimmed)
		}
	}
	return doc, nil
}
