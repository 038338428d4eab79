package market

import "context"

// LedgerResult is the ledger's response to a deduction.
type LedgerResult struct {
	Code int
	Msg  string
}

// OK reports whether the deduction was accepted (2xx code).
func (r LedgerResult) OK() bool {
	return r.Code >= 200 && r.Code < 300
}

// Ledger is the points service of record the market deducts from. The market
// consumes only this contract; balances and accounting belong to the ledger.
//
// Rollback must tolerate transaction ids it has never seen: the purchase
// protocol compensates defensively and may roll back a deduction that never
// happened.
type Ledger interface {
	GenerateTransactionID() string
	Reduce(ctx context.Context, userID, transactionID string, amount int64, source string) (LedgerResult, error)
	Rollback(ctx context.Context, userID, transactionID, source string) error
	UserName(ctx context.Context, userID string) (string, error)
}
