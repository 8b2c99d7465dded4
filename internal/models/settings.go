package models

// BankDetails is the singleton receiving-account record shown during the
// Buy flow.
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	UpiID         string `json:"upi_id"`
}

// HelpLinks is the singleton support-contact record.
type HelpLinks struct {
	Telegram        string `json:"telegram"`
	CustomerService string `json:"customer_service"`
}

// AdminCredentials is the singleton admin login pair. The password is
// stored bcrypt-hashed.
type AdminCredentials struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}
