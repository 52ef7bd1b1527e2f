package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Sentinel errors for directory operations.
var (
	// ErrNotFound indicates no customer holds the given account number.
	ErrNotFound = errors.New("account not found")

	// ErrCardNotFound indicates no card matches the issuer and type.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardAlreadyBlocked indicates the matched card is already blocked.
	ErrCardAlreadyBlocked = errors.New("card already blocked")
)

// Directory is the in-memory customer lookup service.
// Safe for concurrent use: reads take a shared lock, BlockCard takes an
// exclusive lock.
type Directory struct {
	mu          sync.RWMutex
	customers   map[int]*Customer // keyed by customer ID
	accountToID map[string]int    // account number -> customer ID
	logger      *slog.Logger
}

// New builds a directory from joined customer profiles.
// Used by the workbook loader and directly by tests.
func New(customers []Customer, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Directory{
		customers:   make(map[int]*Customer, len(customers)),
		accountToID: make(map[string]int),
		logger:      logger,
	}
	for i := range customers {
		c := customers[i]
		d.customers[c.ID] = &c
		for _, acc := range c.Accounts {
			d.accountToID[acc.Number] = c.ID
		}
	}

	logger.Debug("customer directory ready",
		"customers", len(d.customers),
		"accounts", len(d.accountToID))
	return d
}

// Lookup finds the customer holding the given account number.
// The account number is trimmed before matching. Returns a deep copy so
// the caller's snapshot is isolated from later card-block mutations.
func (d *Directory) Lookup(accountNo string) (*Customer, error) {
	accountNo = strings.TrimSpace(accountNo)
	if accountNo == "" {
		return nil, ErrNotFound
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.accountToID[accountNo]
	if !ok {
		return nil, ErrNotFound
	}
	c, ok := d.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

// Len returns the number of customers loaded.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.customers)
}

// BlockCard blocks the card matching issuer and card type on the
// customer's profile. Matching is case-insensitive. The caller should
// re-Lookup afterwards so its session snapshot reflects the new status.
func (d *Directory) BlockCard(accountNo, issuer, cardType string) error {
	accountNo = strings.TrimSpace(accountNo)

	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.accountToID[accountNo]
	if !ok {
		return ErrNotFound
	}
	c := d.customers[id]

	for i := range c.Cards {
		card := &c.Cards[i]
		if !strings.EqualFold(card.Issuer, issuer) || !strings.EqualFold(card.Type, cardType) {
			continue
		}
		if card.Status == CardStatusBlocked {
			return ErrCardAlreadyBlocked
		}
		card.Status = CardStatusBlocked
		d.logger.Info("card blocked",
			"account", card.AccountNumber,
			"issuer", card.Issuer,
			"type", card.Type)
		return nil
	}

	return fmt.Errorf("%w: no %s %s card on this account", ErrCardNotFound, issuer, cardType)
}
