package extraction

import "fmt"

// ErrorCode identifies a document-ingestion failure class.
type ErrorCode string

const (
	ErrDocumentUnreadable ErrorCode = "DOCUMENT_UNREADABLE"
	ErrDocumentEmpty      ErrorCode = "DOCUMENT_EMPTY"
	ErrFetchFailed        ErrorCode = "FETCH_FAILED"
	ErrNoDocuments        ErrorCode = "NO_DOCUMENTS"
)

// IngestError is a structured error for document-ingestion failures.
// Retryable marks transient conditions (a fetch from remote storage);
// a malformed document never is.
type IngestError struct {
	Code      ErrorCode
	Message   string
	Document  string
	Retryable bool
	Cause     error
}

func (e *IngestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *IngestError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *IngestError) IsRetryable() bool {
	return e.Retryable
}
