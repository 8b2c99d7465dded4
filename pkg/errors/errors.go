package errors

import "errors"

var (
	ErrValidation         = errors.New("invalid input")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrMissingDestination = errors.New("no destination UPI selected")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account is banned")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCooldownActive     = errors.New("resend cooldown active")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTaskNotFound       = errors.New("deposit task not found")
	ErrUpiNotFound        = errors.New("upi account not found")
	ErrSettingNotFound    = errors.New("setting not found")
	ErrNilUser            = errors.New("user is nil")
	ErrNilTransaction     = errors.New("transaction is nil")
	ErrInternal           = errors.New("internal error")
)
