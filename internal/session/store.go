// Package session holds the state of one payment page session: the page
// configuration read from its query string, the recipient resolved for it,
// and the outcome of the payment.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/payment-portal/pkg/logging"
	"github.com/example/payment-portal/pkg/money"
)

const DefaultLookupTimeout = 10 * time.Second

// RecipientLookup resolves a portal code to its recipient. A recipient with
// an empty ID means the portal is unknown.
type RecipientLookup interface {
	Recipient(ctx context.Context, portalCode, env string) (Recipient, error)
}

type LookupFunc func(ctx context.Context, portalCode, env string) (Recipient, error)

func (f LookupFunc) Recipient(ctx context.Context, portalCode, env string) (Recipient, error) {
	return f(ctx, portalCode, env)
}

type AmountFormatter interface {
	Format(amount float64, currency string) string
}

// Completion is what the processor reports once the payer submits.
type Completion struct {
	Reference     string
	Status        string
	PaymentMethod string
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithRoutes(routes map[int]CallbackRoute) Option {
	return func(s *Store) { s.routes = routes }
}

func WithMaxPaymentNumber(n int) Option {
	return func(s *Store) { s.maxPaymentNumber = n }
}

func WithDefaultTitle(title string) Option {
	return func(s *Store) { s.defaultTitle = title }
}

func WithFormatter(f AmountFormatter) Option {
	return func(s *Store) { s.format = f }
}

func WithLookupTimeout(d time.Duration) Option {
	return func(s *Store) { s.lookupTimeout = d }
}

// Store is safe for concurrent use. Every commit happens under one lock, so a
// reader never observes half of a commit.
type Store struct {
	mu    sync.RWMutex
	state State
	gen   uint64

	lookup           RecipientLookup
	format           AmountFormatter
	log              *slog.Logger
	routes           map[int]CallbackRoute
	maxPaymentNumber int
	defaultTitle     string
	lookupTimeout    time.Duration
}

func NewStore(lookup RecipientLookup, opts ...Option) *Store {
	s := &Store{
		state:            newState(),
		lookup:           lookup,
		format:           money.NewFormatter("en"),
		log:              logging.Discard(),
		routes:           DefaultCallbackRoutes,
		maxPaymentNumber: DefaultMaxPaymentNumber,
		defaultTitle:     DefaultTitle,
		lookupTimeout:    DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lookup == nil {
		s.lookup = LookupFunc(func(context.Context, string, string) (Recipient, error) {
			return Recipient{}, fmt.Errorf("no recipient lookup configured")
		})
	}
	return s
}

// Load applies the page parameters and starts resolving the recipient. UI and
// payment state are committed before Load returns; portal state follows once
// the lookup settles, at which point the returned channel is closed. A later
// Load supersedes this one and its lookup result is dropped.
func (s *Store) Load(ctx context.Context, p Params) <-chan struct{} {
	env := DefaultEnv
	if p.Env != nil {
		env = *p.Env
	}
	num := str(p.PaymentNumber)
	portalCode := PortalCode(str(p.Currency))
	route := RouteFor(p.PaymentNumber, s.routes)
	errs := Validate(p, s.maxPaymentNumber)

	var amount *float64
	if v, ok := parseNumber(str(p.Amount)); ok {
		amount = &v
	}
	payment := Payment{
		Amount:      amount,
		FirstName:   str(p.FirstName),
		LastName:    str(p.LastName),
		Email:       str(p.Email),
		Phone:       str(p.Phone),
		Address:     str(p.Address),
		City:        str(p.City),
		Country:     str(p.Country),
		CallbackURL: route.URL,
		CallbackID:  str(p.EntityID),
		Parameters: map[string]string{
			ParamPaymentNumber: num,
			ParamEntityType:    route.EntityType,
			ParamEntityID:      str(p.EntityID),
			ParamInvoiceNumber: strings.TrimSpace(str(p.FirstName) + " " + str(p.LastName)),
		},
	}

	title := s.defaultTitle
	if p.Title != nil {
		title = *p.Title
	}
	subTitle := "Payment Number: " + num
	if p.SubTitle != nil {
		subTitle = *p.SubTitle
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.UI.IsLoading = true
	s.state.UI.ConfigErrors = append(s.state.UI.ConfigErrors, errs...)
	s.state.Payment = payment
	s.state.UI.Title = title
	s.state.UI.SubTitle = subTitle
	s.mu.Unlock()

	if len(errs) > 0 {
		s.log.Info("session config invalid", "errors", errs)
	}

	done := make(chan struct{})
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookupTimeout)
	go func() {
		defer close(done)
		defer cancel()

		rcp, err := s.lookup.Recipient(lookupCtx, portalCode, env)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			s.log.Debug("stale recipient lookup dropped", "portal_code", portalCode)
			return
		}
		switch {
		case err != nil:
			s.log.Warn("recipient lookup failed", "portal_code", portalCode, "env", env, "err", err)
			s.state.UI.ConfigErrors = append(s.state.UI.ConfigErrors,
				fmt.Sprintf("Unable to load client details (%s)", displayCode(portalCode)))
			rcp = Recipient{}
		case rcp.ID == "":
			s.state.UI.ConfigErrors = append(s.state.UI.ConfigErrors,
				fmt.Sprintf("Client not found (%s)", displayCode(portalCode)))
		}
		s.state.Portal = Portal{Env: env, PortalCode: portalCode, Recipient: rcp}
		s.state.UI.IsLoading = false
	}()
	return done
}

// PaymentSetErrors replaces the payment errors with errs.
func (s *Store) PaymentSetErrors(errs []string) {
	next := append([]string{}, errs...)
	s.mu.Lock()
	s.state.UI.PaymentErrors = next
	s.mu.Unlock()
}

// Pay resets both error lists ahead of a submission.
func (s *Store) Pay() {
	s.ClearErrors()
}

func (s *Store) ClearErrors() {
	s.mu.Lock()
	s.state.UI.ConfigErrors = []string{}
	s.state.UI.PaymentErrors = []string{}
	s.mu.Unlock()
}

// Complete records the result and reports whether it differs from the one
// already held, so a repeated report can be told apart from a new one.
func (s *Store) Complete(c Completion) bool {
	next := Result{
		Status:        ParseResultStatus(c.Status),
		RawStatus:     c.Status,
		Reference:     c.Reference,
		PaymentMethod: c.PaymentMethod,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if next == s.state.Result {
		return false
	}
	s.state.Result = next
	return true
}

// State returns a copy; mutating it does not affect the store.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:           s.state.clone(),
		FormattedAmount: s.formattedAmount(),
		Client:          s.state.client(),
		CanPay:          s.state.canPay(),
		IsError:         s.state.isError(),
		Submitted:       s.state.Result.Status != StatusNone,
	}
}

func (s *Store) FormattedAmount() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formattedAmount()
}

func (s *Store) Client() Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.client()
}

func (s *Store) CanPay() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.canPay()
}

// IsError is true once loading is over and there is no successful or pending
// result. A session that has not been submitted yet counts as an error; use
// Snapshot().Submitted to tell the two apart.
func (s *Store) IsError() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.isError()
}

func (s *Store) formattedAmount() string {
	if s.state.Payment.Amount == nil {
		return ""
	}
	return s.format.Format(*s.state.Payment.Amount, s.state.Portal.Recipient.Currency)
}

func (st State) client() Client {
	return Client{Name: st.Portal.Recipient.Name, Logo: st.Portal.Recipient.LogoURL}
}

func (st State) canPay() bool {
	return !st.UI.IsLoading && len(st.UI.ConfigErrors) == 0
}

func (st State) isError() bool {
	return !st.UI.IsLoading &&
		st.Result.Status != StatusSuccess &&
		st.Result.Status != StatusPending
}

func displayCode(code string) string {
	if code == "" {
		return "none"
	}
	return code
}
