package claims

import (
	"fmt"
	"strings"
)

// MissingIdentifierError is returned when customer_id or transaction_id is absent.
type MissingIdentifierError struct {
	Field         string
	TransactionID string
}

func (e *MissingIdentifierError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("claim %s: missing required identifier %s", e.TransactionID, e.Field)
	}
	return fmt.Sprintf("claim record missing required identifier %s", e.Field)
}

// InvalidFieldError lists fields whose values could not be accepted.
type InvalidFieldError struct {
	Fields        []string
	TransactionID string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("claim %s: invalid fields: %s", e.TransactionID, strings.Join(e.Fields, "; "))
}
