// Package directory provides the customer directory: an immutable in-memory
// lookup of customer profiles keyed by account number, loaded once at
// startup from a three-sheet workbook (Customer, Card, Transaction).
//
// The directory is read-only after load with one exception: BlockCard
// flips a card's status under a write lock. Lookup returns defensive
// copies so session snapshots are never aliased to directory state.
package directory

import "time"

// Account is a single bank account belonging to a customer.
type Account struct {
	Number             string
	Name               string
	Currency           string
	AccountType        string
	ProductType        string
	ProductDescription string
	Balance            float64
	OpenDate           string // normalized to YYYY-MM-DD when parseable
}

// Card statuses as stored in the workbook.
const (
	CardStatusActive  = "Active"
	CardStatusBlocked = "Blocked"
)

// Card is a debit/ATM card linked to one of the customer's accounts.
type Card struct {
	AccountNumber  string
	Issuer         string
	Type           string
	ActivationDate string
	Status         string
}

// Transaction is a single account transaction.
type Transaction struct {
	AccountNumber   string
	Date            time.Time
	Type            string // "Credit" or "Debit"
	Amount          float64
	Destination     string
	Narration       string
	DestinationBank string
	Status          string
	FailureReason   string
}

// Customer is the unified profile joined across all three sheets.
// A customer may hold several accounts; cards and transactions are
// attached via the owning account.
type Customer struct {
	ID           int
	Name         string
	Accounts     []Account
	Cards        []Card
	Transactions map[string][]Transaction // keyed by account number
}

// clone returns a deep copy of the customer profile.
func (c *Customer) clone() *Customer {
	cp := &Customer{
		ID:       c.ID,
		Name:     c.Name,
		Accounts: make([]Account, len(c.Accounts)),
		Cards:    make([]Card, len(c.Cards)),
	}
	copy(cp.Accounts, c.Accounts)
	copy(cp.Cards, c.Cards)
	if c.Transactions != nil {
		cp.Transactions = make(map[string][]Transaction, len(c.Transactions))
		for acc, txns := range c.Transactions {
			ts := make([]Transaction, len(txns))
			copy(ts, txns)
			cp.Transactions[acc] = ts
		}
	}
	return cp
}
