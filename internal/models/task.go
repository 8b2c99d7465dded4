package models

import "github.com/shopspring/decimal"

// DepositTask is an admin-defined purchasable plan. A Buy transaction
// snapshots the task's title and amount at submission time, so later edits
// do not retroactively alter historical transactions.
type DepositTask struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}
