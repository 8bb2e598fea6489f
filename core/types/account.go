package types

import "math/big"

// Account holds the spendable balance and nonce tracked for every principal
// known to the node, including the module vault and the platform treasury.
type Account struct {
	Nonce   uint64
	Balance *big.Int
}

// NewAccount returns an empty account with a zeroed balance.
func NewAccount() *Account {
	return &Account{Balance: big.NewInt(0)}
}

// Event represents a structured state change recorded alongside an operation.
type Event struct {
	Type       string
	Attributes map[string]string
}
