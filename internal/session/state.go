package session

import "strings"

type ResultStatus string

const (
	StatusNone    ResultStatus = ""
	StatusSuccess ResultStatus = "success"
	StatusPending ResultStatus = "pending"
	StatusFailed  ResultStatus = "failed"
	StatusUnknown ResultStatus = "unknown"
)

// ParseResultStatus maps the processor's open status vocabulary onto the
// closed set. Unrecognised values become StatusUnknown.
func ParseResultStatus(s string) ResultStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return StatusNone
	case "success":
		return StatusSuccess
	case "pending":
		return StatusPending
	case "failed", "failure", "error", "cancelled", "canceled", "declined":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

type UI struct {
	IsLoading     bool     `json:"isLoading"`
	Title         string   `json:"title"`
	SubTitle      string   `json:"subTitle"`
	ConfigErrors  []string `json:"configErrors"`
	PaymentErrors []string `json:"paymentErrors"`
}

type Recipient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	LogoURL  string `json:"logo_url"`
}

type Portal struct {
	Env        string    `json:"env"`
	PortalCode string    `json:"portalCode"`
	Recipient  Recipient `json:"recipient"`
}

// Payment parameter keys forwarded to the processor with the payment.
const (
	ParamPaymentNumber = "payment_number"
	ParamEntityType    = "zoho_entity_type"
	ParamEntityID      = "zoho_entity_id"
	ParamInvoiceNumber = "invoice_number"
)

type Payment struct {
	Amount      *float64          `json:"amount"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	Country     string            `json:"country"`
	CallbackURL string            `json:"callbackUrl"`
	CallbackID  string            `json:"callbackId"`
	Parameters  map[string]string `json:"parameters"`
}

// Result keeps the processor's own status word in RawStatus, since Status
// folds the open vocabulary into a closed set.
type Result struct {
	Status        ResultStatus `json:"status"`
	RawStatus     string       `json:"rawStatus"`
	Reference     string       `json:"reference"`
	PaymentMethod string       `json:"paymentMethod"`
}

type State struct {
	UI      UI      `json:"ui"`
	Portal  Portal  `json:"portal"`
	Payment Payment `json:"payment"`
	Result  Result  `json:"result"`
}

type Client struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Snapshot is the state plus every derived value, taken under one lock.
type Snapshot struct {
	State
	FormattedAmount string `json:"formattedAmount"`
	Client          Client `json:"client"`
	CanPay          bool   `json:"canPay"`
	IsError         bool   `json:"isError"`
	Submitted       bool   `json:"submitted"`
}

func newState() State {
	return State{
		UI: UI{
			ConfigErrors:  []string{},
			PaymentErrors: []string{},
		},
		Payment: Payment{Parameters: map[string]string{}},
	}
}

func (s State) clone() State {
	out := s
	out.UI.ConfigErrors = append([]string{}, s.UI.ConfigErrors...)
	out.UI.PaymentErrors = append([]string{}, s.UI.PaymentErrors...)
	if s.Payment.Amount != nil {
		amt := *s.Payment.Amount
		out.Payment.Amount = &amt
	}
	out.Payment.Parameters = make(map[string]string, len(s.Payment.Parameters))
	for k, v := range s.Payment.Parameters {
		out.Payment.Parameters[k] = v
	}
	return out
}
