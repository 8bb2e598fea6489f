package genesis

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gigchain/crypto"
)

// Allocation funds principals at first boot so dev and test deployments have
// spendable balances before any gig is created.
type Allocation struct {
	// Alloc maps bech32 principal addresses to decimal starting balances.
	Alloc map[string]string `yaml:"alloc"`
}

// Entry is one resolved genesis balance.
type Entry struct {
	Address [20]byte
	Balance *big.Int
}

// LoadFile reads and resolves a yaml allocation file.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse resolves a yaml allocation document into funded entries.
func Parse(data []byte) ([]Entry, error) {
	var alloc Allocation
	if err := yaml.Unmarshal(data, &alloc); err != nil {
		return nil, fmt.Errorf("genesis: invalid allocation file: %w", err)
	}
	entries := make([]Entry, 0, len(alloc.Alloc))
	for addrStr, balanceStr := range alloc.Alloc {
		addr, err := crypto.DecodeAddress(strings.TrimSpace(addrStr))
		if err != nil {
			return nil, fmt.Errorf("genesis: %w", err)
		}
		balance, ok := new(big.Int).SetString(strings.TrimSpace(balanceStr), 10)
		if !ok || balance.Sign() < 0 {
			return nil, fmt.Errorf("genesis: invalid balance %q for %s", balanceStr, addrStr)
		}
		entries = append(entries, Entry{Address: addr.Array(), Balance: balance})
	}
	return entries, nil
}
