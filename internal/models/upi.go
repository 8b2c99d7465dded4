package models

type UpiApp string

const (
	AppPhonePe UpiApp = "PhonePe"
	AppPaytm   UpiApp = "Paytm"
	AppGpay    UpiApp = "Gpay"
	AppFamPay  UpiApp = "FamPay"
)

func ValidUpiApp(app UpiApp) bool {
	switch app {
	case AppPhonePe, AppPaytm, AppGpay, AppFamPay:
		return true
	}
	return false
}

// UpiAccount is a saved payout destination. The list is global, not scoped
// to a user; Sell submissions validate the destination against it.
type UpiAccount struct {
	ID      string `json:"id"`
	UpiID   string `json:"upi_id"`
	AppName UpiApp `json:"app_name"`
}
