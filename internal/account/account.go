package account

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

var (
	ErrArithmeticOverflow  = errors.New("balance arithmetic overflow")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Account is a participant's balance ledger. The matching engine never
// touches it; callers mint and burn to settle the trades reported back
// to them.
type Account struct {
	id      uuid.UUID
	balance uint64
}

func New() *Account {
	return &Account{
		id: uuid.New(),
	}
}

func (a *Account) ID() uuid.UUID {
	return a.id
}

// Mint credits the balance. Crediting past the representable range is an
// error, never a silent wraparound.
func (a *Account) Mint(amount uint64) error {
	if amount > math.MaxUint64-a.balance {
		return fmt.Errorf("mint %d onto balance %d: %w", amount, a.balance, ErrArithmeticOverflow)
	}
	a.balance += amount
	return nil
}

// Burn debits the balance. The balance is never allowed to go negative.
func (a *Account) Burn(amount uint64) error {
	if amount > a.balance {
		return fmt.Errorf("burn %d from balance %d: %w", amount, a.balance, ErrInsufficientBalance)
	}
	a.balance -= amount
	return nil
}

func (a *Account) Balance() uint64 {
	return a.balance
}
