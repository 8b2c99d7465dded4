package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID         string            `json:"id"`
	Type       TransactionType   `json:"type"`
	Amount     decimal.Decimal   `json:"amount"`
	Commission decimal.Decimal   `json:"commission"`
	Date       time.Time         `json:"date"`
	Status     TransactionStatus `json:"status"`
	Details    string            `json:"details,omitempty"`
	Screenshot string            `json:"screenshot,omitempty"`
	UserEmail  string            `json:"user_email"`
	TaskTitle  string            `json:"task_title,omitempty"`
}

type TransactionType string

const (
	TypeBuy  TransactionType = "Buy"
	TypeSell TransactionType = "Sell"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "Pending"
	StatusCompleted TransactionStatus = "Completed"
	StatusRejected  TransactionStatus = "Rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}
