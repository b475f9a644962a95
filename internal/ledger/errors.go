package ledger

import "errors"

// Error taxonomy of the ledger. Callers match with errors.Is; wrapped
// messages carry the offending field or id.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrEmptyCart  = errors.New("cart is empty")
	ErrImport     = errors.New("invalid backup payload")
)
