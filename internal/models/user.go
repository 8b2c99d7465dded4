package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	UID          string          `json:"uid"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	IsBanned     bool            `json:"is_banned"`
	JoinedDate   time.Time       `json:"joined_date"`
	ReferralCode string          `json:"referral_code"`
	ReferredBy   string          `json:"referred_by,omitempty"`
}
