package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts must fit NUMERIC(19,4): 15 integer digits and 4 decimal places.
const (
	MaxAmountIntegerDigits = 15
	MaxAmountScale         = 4
)

var ErrCashCardNotFound = errors.New("cash card not found")
var ErrInvalidAmount = errors.New("amount is required and must be a number")
var ErrInvalidSort = errors.New("invalid sort parameter")

// CashCard is a stored amount belonging to exactly one owner.
// ID is zero until the card has been persisted.
type CashCard struct {
	ID     int64
	Amount decimal.Decimal
	Owner  string
}

// NewCashCard builds an unsaved card for owner.
func NewCashCard(amount decimal.Decimal, owner string) *CashCard {
	return &CashCard{Amount: amount, Owner: owner}
}

// WithAmount returns a copy of c carrying amount. ID and Owner are kept.
func (c *CashCard) WithAmount(amount decimal.Decimal) *CashCard {
	return &CashCard{ID: c.ID, Amount: amount, Owner: c.Owner}
}

// Equal compares two cards field by field. Amounts are compared by value,
// so 100.5 and 100.50 are equal.
func (c *CashCard) Equal(other *CashCard) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ID == other.ID && c.Owner == other.Owner && c.Amount.Equal(other.Amount)
}

// ValidateAmount rejects amounts that do not fit MaxAmountIntegerDigits and
// MaxAmountScale. Trailing fractional zeros are allowed, so 1.50000 passes.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	exp := int64(amount.Exponent())
	digits := int64(amount.NumDigits())
	if digits+exp > MaxAmountIntegerDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrInvalidAmount, MaxAmountIntegerDigits)
	}
	if exp >= -MaxAmountScale {
		return nil
	}
	// Needs at least -exp-MaxAmountScale trailing zeros in the coefficient.
	if -exp-MaxAmountScale >= digits || !amount.Truncate(MaxAmountScale).Equal(amount) {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, MaxAmountScale)
	}
	return nil
}
