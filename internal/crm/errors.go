package crm

import "fmt"

// CRMError represents an error response from the CRM API
type CRMError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *CRMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("CRM API error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("CRM API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *CRMError) Unwrap() error {
	return e.Err
}

// AuthError represents a failed token refresh. It is fatal for the account's
// remaining passes that need a fresh token but never aborts other accounts.
type AuthError struct {
	AccountID string
	Err       error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token refresh failed for account %s: %v", e.AccountID, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchExhaustedError represents a page fetch that failed all retry attempts.
// It aborts the current record-type pass only.
type FetchExhaustedError struct {
	RecordType string
	Attempts   int
	Err        error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.RecordType, e.Attempts, e.Err)
}

func (e *FetchExhaustedError) Unwrap() error {
	return e.Err
}

// NewCRMError creates a new CRMError with the given status code and message
func NewCRMError(statusCode int, message string, err error) error {
	return &CRMError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// NewAuthError creates a new AuthError
func NewAuthError(accountID string, err error) error {
	return &AuthError{
		AccountID: accountID,
		Err:       err,
	}
}

// NewFetchExhaustedError creates a new FetchExhaustedError
func NewFetchExhaustedError(recordType string, attempts int, err error) error {
	return &FetchExhaustedError{
		RecordType: recordType,
		Attempts:   attempts,
		Err:        err,
	}
}

// IsAuthError checks if an error is a token refresh failure
func IsAuthError(err error) bool {
	_, ok := err.(*AuthError)
	return ok
}

// IsFetchExhausted checks if an error is a retry exhaustion
func IsFetchExhausted(err error) bool {
	_, ok := err.(*FetchExhaustedError)
	return ok
}
