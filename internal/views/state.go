// Package views models the client navigation state as a tagged union:
// each screen is its own type carrying only the data that screen needs,
// so invalid view/data combinations cannot be represented.
package views

// State is implemented only by the view types in this package.
type State interface {
	Name() string
	view()
}

// BuyStep orders the three screens of the deposit flow.
type BuyStep int

const (
	BuyStepPlans BuyStep = iota
	BuyStepOrder
	BuyStepPayment
)

type Login struct{}

// AdminLogin is the separate back-office credential screen.
type AdminLogin struct{}

// Verify is the registration code-entry screen. ResendCountdown is the
// number of whole seconds left before the code can be resent.
type Verify struct {
	Email           string `json:"email"`
	ResendCountdown int    `json:"resendCountdown"`
}

type Home struct{}

type Upi struct{}

// Buy tracks progress through the deposit flow. TaskID is set once a plan
// has been picked on the first step.
type Buy struct {
	Step   BuyStep `json:"step"`
	TaskID string  `json:"taskId,omitempty"`
}

type Sell struct{}

type Bill struct{}

type Help struct{}

type Profile struct{}

type Refer struct{}

type AdminHome struct{}

type AdminBank struct{}

type AdminBuyRequests struct{}

type AdminSellRequests struct{}

type AdminUsers struct{}

type AdminHelp struct{}

type AdminSettings struct{}

func (Login) Name() string             { return "login" }
func (AdminLogin) Name() string        { return "admin-login" }
func (Verify) Name() string            { return "verify" }
func (Home) Name() string              { return "home" }
func (Upi) Name() string               { return "upi" }
func (Buy) Name() string               { return "buy" }
func (Sell) Name() string              { return "sell" }
func (Bill) Name() string              { return "bill" }
func (Help) Name() string              { return "help" }
func (Profile) Name() string           { return "profile" }
func (Refer) Name() string             { return "refer" }
func (AdminHome) Name() string         { return "admin-home" }
func (AdminBank) Name() string         { return "admin-bank" }
func (AdminBuyRequests) Name() string  { return "admin-buy-requests" }
func (AdminSellRequests) Name() string { return "admin-sell-requests" }
func (AdminUsers) Name() string        { return "admin-users" }
func (AdminHelp) Name() string         { return "admin-help" }
func (AdminSettings) Name() string     { return "admin-settings" }

func (Login) view()             {}
func (AdminLogin) view()        {}
func (Verify) view()            {}
func (Home) view()              {}
func (Upi) view()               {}
func (Buy) view()               {}
func (Sell) view()              {}
func (Bill) view()              {}
func (Help) view()              {}
func (Profile) view()           {}
func (Refer) view()             {}
func (AdminHome) view()         {}
func (AdminBank) view()         {}
func (AdminBuyRequests) view()  {}
func (AdminSellRequests) view() {}
func (AdminUsers) view()        {}
func (AdminHelp) view()         {}
func (AdminSettings) view()     {}

// Back applies the screen-specific back-navigation rules. Inside the
// deposit flow back walks one step at a time before leaving to Home;
// admin subscreens return to the admin home.
func Back(s State) State {
	switch v := s.(type) {
	case Buy:
		switch v.Step {
		case BuyStepPayment:
			return Buy{Step: BuyStepOrder, TaskID: v.TaskID}
		case BuyStepOrder:
			return Buy{Step: BuyStepPlans}
		default:
			return Home{}
		}
	case Verify:
		return Login{}
	case Login, AdminLogin:
		return s
	case AdminBank, AdminBuyRequests, AdminSellRequests, AdminUsers, AdminHelp, AdminSettings:
		return AdminHome{}
	case AdminHome:
		return AdminLogin{}
	default:
		return Home{}
	}
}

// Tick advances one second of wall-clock time. Only the Verify screen
// carries a countdown; it never goes below zero.
func Tick(s State) State {
	if v, ok := s.(Verify); ok && v.ResendCountdown > 0 {
		v.ResendCountdown--
		return v
	}
	return s
}
