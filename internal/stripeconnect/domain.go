// Package stripeconnect wraps the payment processor API behind a narrow
// interface so domain services can be tested with fakes.
package stripeconnect

import (
	"context"
	"time"
)

// Account is the subset of a connected account this system reads.
type Account struct {
	ID                 string
	ChargesEnabled     bool
	PayoutsEnabled     bool
	DetailsSubmitted   bool
	CurrentlyDue       []string
	FutureCurrentlyDue []string
	DisabledReason     string
}

type AccountLink struct {
	URL       string
	ExpiresAt time.Time
}

type BalanceTransaction struct {
	ID  string
	Fee int64
}

// BalanceTransactionNode is either a bare reference or an inlined record,
// depending on how deep the processor expanded the response.
type BalanceTransactionNode struct {
	ID      string
	Inlined *BalanceTransaction
}

type Charge struct {
	ID                 string
	BalanceTransaction BalanceTransactionNode
}

// ChargeNode mirrors BalanceTransactionNode for the payment's latest charge.
type ChargeNode struct {
	ID      string
	Inlined *Charge
}

type PaymentIntent struct {
	ID                   string
	Status               string
	ApplicationFeeAmount int64
	Metadata             map[string]string
	LatestCharge         ChargeNode
}

type CheckoutSession struct {
	ID                string
	URL               string
	Mode              string
	PaymentStatus     string
	AmountTotal       int64
	ClientReferenceID string
	CustomerID        string
	Metadata          map[string]string
	PaymentIntent     *PaymentIntent
}

type CreateAccountParams struct {
	Email              string
	FirstName          string
	LastName           string
	BusinessURL        string
	ProductDescription string
	MCC                string
}

type UpdateAccountParams struct {
	Email     string
	FirstName string
	LastName  string
}

type AccountLinkParams struct {
	AccountID  string
	ReturnURL  string
	RefreshURL string
}

type CheckoutLineItem struct {
	Name     string
	Amount   int64
	Currency string
}

type CheckoutParams struct {
	SuccessURL           string
	CancelURL            string
	ClientReferenceID    string
	LineItems            []CheckoutLineItem
	DestinationAccountID string
	ApplicationFeeAmount int64
	Metadata             map[string]string
}

// Client is the payment processor surface used by this system.
type Client interface {
	CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error)
	UpdateAccount(ctx context.Context, accountID string, params UpdateAccountParams) (*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	CreateAccountLink(ctx context.Context, params AccountLinkParams) (*AccountLink, error)
	CreateLoginLink(ctx context.Context, accountID string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	GetCharge(ctx context.Context, chargeID string) (*Charge, error)
	GetBalanceTransaction(ctx context.Context, id string) (*BalanceTransaction, error)
}

// ResolveCharge normalizes a charge node to its inlined form, fetching by id
// when the processor returned only a reference.
func ResolveCharge(ctx context.Context, c Client, node ChargeNode) (*Charge, error) {
	if node.Inlined != nil {
		return node.Inlined, nil
	}
	if node.ID == "" {
		return nil, nil
	}
	return c.GetCharge(ctx, node.ID)
}

// ResolveBalanceTransaction normalizes a balance transaction node to its
// inlined form.
func ResolveBalanceTransaction(ctx context.Context, c Client, node BalanceTransactionNode) (*BalanceTransaction, error) {
	if node.Inlined != nil {
		return node.Inlined, nil
	}
	if node.ID == "" {
		return nil, nil
	}
	return c.GetBalanceTransaction(ctx, node.ID)
}
