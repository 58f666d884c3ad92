package models

import "fmt"

// Money is an exact amount in a currency's minor units.
// Example: ₹5,000 is stored as 500000 paisa; $10.50 is stored as 1050 cents.
type Money struct {
	// Amount is a signed count of minor units.
	Amount int64

	// Currency is the ISO-4217-style code (e.g., "INR", "USD").
	Currency string
}

// Add returns the sum of two amounts, failing on a currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns the difference of two amounts, failing on a currency mismatch.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot subtract %s from %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// String formats the amount as "<minor units> <currency>" for logs.
// Display formatting (decimal points, symbols) is a presentation concern.
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
