package stripeconnect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// apiClient implements Client against the live Stripe API.
type apiClient struct {
	api *client.API
}

// NewClient builds a Stripe-backed Client.
func NewClient(secretKey string) (Client, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &apiClient{api: api}, nil
}

func (c *apiClient) CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error) {
	accountParams := &stripe.AccountParams{
		Params:       stripe.Params{Context: ctx},
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Email:        stripe.String(params.Email),
		Individual: &stripe.PersonParams{
			FirstName: optionalString(params.FirstName),
			LastName:  optionalString(params.LastName),
			Email:     optionalString(params.Email),
		},
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			URL:                stripe.String(params.BusinessURL),
			ProductDescription: stripe.String(params.ProductDescription),
			MCC:                stripe.String(params.MCC),
		},
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}

	acct, err := c.api.Accounts.New(accountParams)
	if err != nil {
		return nil, wrapErr("account.create", err)
	}
	return mapAccount(acct), nil
}

func (c *apiClient) UpdateAccount(ctx context.Context, accountID string, params UpdateAccountParams) (*Account, error) {
	accountParams := &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
		Email:  optionalString(params.Email),
		Individual: &stripe.PersonParams{
			FirstName: optionalString(params.FirstName),
			LastName:  optionalString(params.LastName),
			Email:     optionalString(params.Email),
		},
	}

	acct, err := c.api.Accounts.Update(accountID, accountParams)
	if err != nil {
		return nil, wrapErr("account.update", err)
	}
	return mapAccount(acct), nil
}

func (c *apiClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	acct, err := c.api.Accounts.GetByID(accountID, &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, wrapErr("account.retrieve", err)
	}
	return mapAccount(acct), nil
}

func (c *apiClient) CreateAccountLink(ctx context.Context, params AccountLinkParams) (*AccountLink, error) {
	link, err := c.api.AccountLinks.New(&stripe.AccountLinkParams{
		Params:     stripe.Params{Context: ctx},
		Account:    stripe.String(params.AccountID),
		ReturnURL:  stripe.String(params.ReturnURL),
		RefreshURL: stripe.String(params.RefreshURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
		CollectionOptions: &stripe.AccountLinkCollectionOptionsParams{
			Fields: stripe.String("currently_due"),
		},
	})
	if err != nil {
		return nil, wrapErr("accountlink.create", err)
	}
	return &AccountLink{
		URL:       link.URL,
		ExpiresAt: time.Unix(link.ExpiresAt, 0).UTC(),
	}, nil
}

func (c *apiClient) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	link, err := c.api.LoginLinks.New(&stripe.LoginLinkParams{
		Params:  stripe.Params{Context: ctx},
		Account: stripe.String(accountID),
	})
	if err != nil {
		return "", wrapErr("loginlink.create", err)
	}
	return link.URL, nil
}

func (c *apiClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.ClientReferenceID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(params.ApplicationFeeAmount),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(params.DestinationAccountID),
			},
			Metadata: params.Metadata,
		},
	}
	for _, item := range params.LineItems {
		sessionParams.LineItems = append(sessionParams.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(item.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}
	for k, v := range params.Metadata {
		sessionParams.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, wrapErr("checkout.session.create", err)
	}
	return mapSession(sess), nil
}

func (c *apiClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("payment_intent")
	params.AddExpand("payment_intent.latest_charge.balance_transaction")

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, wrapErr("checkout.session.retrieve", err)
	}
	return mapSession(sess), nil
}

func (c *apiClient) GetCharge(ctx context.Context, chargeID string) (*Charge, error) {
	params := &stripe.ChargeParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("balance_transaction")

	ch, err := c.api.Charges.Get(chargeID, params)
	if err != nil {
		return nil, wrapErr("charge.retrieve", err)
	}
	return mapCharge(ch), nil
}

func (c *apiClient) GetBalanceTransaction(ctx context.Context, id string) (*BalanceTransaction, error) {
	bt, err := c.api.BalanceTransactions.Get(id, &stripe.BalanceTransactionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, wrapErr("balancetransaction.retrieve", err)
	}
	return &BalanceTransaction{ID: bt.ID, Fee: bt.Fee}, nil
}

func mapAccount(acct *stripe.Account) *Account {
	out := &Account{
		ID:               acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	if acct.Requirements != nil {
		out.CurrentlyDue = acct.Requirements.CurrentlyDue
		out.DisabledReason = string(acct.Requirements.DisabledReason)
	}
	if acct.FutureRequirements != nil {
		out.FutureCurrentlyDue = acct.FutureRequirements.CurrentlyDue
	}
	return out
}

func mapSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:                sess.ID,
		URL:               sess.URL,
		Mode:              string(sess.Mode),
		PaymentStatus:     string(sess.PaymentStatus),
		AmountTotal:       sess.AmountTotal,
		ClientReferenceID: sess.ClientReferenceID,
		Metadata:          sess.Metadata,
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntent = mapPaymentIntent(sess.PaymentIntent)
	}
	return out
}

func mapPaymentIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:                   pi.ID,
		Status:               string(pi.Status),
		ApplicationFeeAmount: pi.ApplicationFeeAmount,
		Metadata:             pi.Metadata,
	}
	if pi.LatestCharge != nil {
		out.LatestCharge = ChargeNode{ID: pi.LatestCharge.ID}
		// An expanded charge always carries a status; a bare reference only
		// carries the id.
		if pi.LatestCharge.Status != "" {
			out.LatestCharge.Inlined = mapCharge(pi.LatestCharge)
		}
	}
	return out
}

func mapCharge(ch *stripe.Charge) *Charge {
	out := &Charge{ID: ch.ID}
	if ch.BalanceTransaction != nil {
		out.BalanceTransaction = BalanceTransactionNode{ID: ch.BalanceTransaction.ID}
		if ch.BalanceTransaction.Created != 0 {
			out.BalanceTransaction.Inlined = &BalanceTransaction{
				ID:  ch.BalanceTransaction.ID,
				Fee: ch.BalanceTransaction.Fee,
			}
		}
	}
	return out
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return stripe.String(value)
}

func wrapErr(op string, err error) error {
	return fmt.Errorf("stripe %s: %w", op, err)
}
