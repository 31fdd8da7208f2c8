package check_claim

import "errors"

var (
	errNoInput    = errors.New("either transactionId or claim is required")
	errBothInputs = errors.New("provide transactionId or claim, not both")
)
